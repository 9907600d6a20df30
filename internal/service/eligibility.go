package service

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"sargenteacao/backend/internal/model"
)

// ── 效力计算规则 ──────────────────────────────────────────────
//
// 对每名在役军人依次判断，命中即停止：
//   1. 离岗覆盖参考日        → BLOCKED_ABSENT，原因为离岗类型名称，间隔天数为空
//   2. 最近一次勤务为前一天  → BLOCKED_CONSECUTIVE_DAY，间隔天数记 0
//   3. 参考日当天已有勤务    → BLOCKED_ALREADY_ASSIGNED，保留间隔天数
//   4. 其余按间隔天数分级：无记录 FIRST_DUTY，≤1 LOW_REST，≤4 NORMAL_REST，>4 HIGH_REST
// ─────────────────────────────────────────────────────────────

const (
	ReasonConsecutiveDay  = "duty yesterday"
	ReasonAlreadyAssigned = "already scheduled"
	ReasonFitForDuty      = "fit for duty"

	// neverServedDays 排序时无勤务记录视为的间隔天数
	neverServedDays = 999
)

// dutyFacts 单人在参考日的勤务事实
type dutyFacts struct {
	absence  *model.Absence
	lastDuty *time.Time // 严格早于参考日的最近一次勤务
	assigned bool       // 参考日当天已有勤务
}

// evaluate 计算单人结果（纯函数）
func evaluate(p model.Personnel, date time.Time, f dutyFacts) model.EligibilityResult {
	res := model.EligibilityResult{Personnel: p}

	if f.absence != nil {
		res.Status = model.StatusBlockedAbsent
		res.Reason = f.absence.Kind.Label()
		return res
	}

	var days *int
	if f.lastDuty != nil {
		d := model.DaysBetween(*f.lastDuty, date)
		days = &d
	}

	if days != nil && *days == 1 {
		zero := 0
		res.Status = model.StatusBlockedConsecutiveDay
		res.Reason = ReasonConsecutiveDay
		res.DaysSinceLastDuty = &zero
		res.AlreadyAssigned = f.assigned
		return res
	}

	res.DaysSinceLastDuty = days

	if f.assigned {
		res.Status = model.StatusBlockedAlreadyAssigned
		res.Reason = ReasonAlreadyAssigned
		res.AlreadyAssigned = true
		return res
	}

	res.Eligible = true
	res.Reason = ReasonFitForDuty
	res.Status = restStatus(days)
	return res
}

// restStatus 按间隔天数分级
func restStatus(days *int) model.EligibilityStatus {
	switch {
	case days == nil:
		return model.StatusFirstDuty
	case *days <= 1:
		return model.StatusLowRest
	case *days <= 4:
		return model.StatusNormalRest
	default:
		return model.StatusHighRest
	}
}

// sortByFairness 公平排序：未排班者在前；同组内间隔天数大者在前（无记录视为 999）；相等时保持读取顺序
func sortByFairness(results []model.EligibilityResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.AlreadyAssigned != b.AlreadyAssigned {
			return !a.AlreadyAssigned
		}
		return restKey(a.DaysSinceLastDuty) > restKey(b.DaysSinceLastDuty)
	})
}

func restKey(days *int) int {
	if days == nil {
		return neverServedDays
	}
	return *days
}

// ── 过滤 ──

// FilterEligible 保留可排班结果，按姓名（忽略大小写与重音）与军衔过滤；空条件不过滤
func FilterEligible(results []model.EligibilityResult, nameQuery string, rank model.Rank) []model.EligibilityResult {
	return filterResults(results, nameQuery, rank, func(r *model.EligibilityResult) bool { return r.Eligible })
}

// FilterIneligible 保留不可排班结果，过滤条件同 FilterEligible
func FilterIneligible(results []model.EligibilityResult, nameQuery string, rank model.Rank) []model.EligibilityResult {
	return filterResults(results, nameQuery, rank, func(r *model.EligibilityResult) bool { return !r.Eligible })
}

// FilterAll 不区分可否排班，仅按姓名与军衔过滤
func FilterAll(results []model.EligibilityResult, nameQuery string, rank model.Rank) []model.EligibilityResult {
	return filterResults(results, nameQuery, rank, func(*model.EligibilityResult) bool { return true })
}

func filterResults(results []model.EligibilityResult, nameQuery string, rank model.Rank, keep func(*model.EligibilityResult) bool) []model.EligibilityResult {
	query := foldName(nameQuery)
	out := make([]model.EligibilityResult, 0, len(results))
	for i := range results {
		r := &results[i]
		if !keep(r) {
			continue
		}
		if rank != "" && r.Personnel.Rank != rank {
			continue
		}
		if query != "" && !strings.Contains(foldName(r.Personnel.Name), query) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// foldName 去除重音并转小写："João" → "joao"
func foldName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// [自证通过] internal/service/eligibility.go
