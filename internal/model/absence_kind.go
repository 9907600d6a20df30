package model

import (
	"fmt"
	"strings"

	pkgerrors "sargenteacao/backend/pkg/errors"
)

// AbsenceKind 离岗类型
type AbsenceKind string

const (
	AbsenceFerias   AbsenceKind = "FERIAS"
	AbsenceLicenca  AbsenceKind = "LICENCA"
	AbsenceMedica   AbsenceKind = "MEDICA"
	AbsenceDispensa AbsenceKind = "DISPENSA"
)

var absenceKindLabels = map[AbsenceKind]string{
	AbsenceFerias:   "Férias",
	AbsenceLicenca:  "Licença",
	AbsenceMedica:   "Dispensa Médica",
	AbsenceDispensa: "Dispensa",
}

// ParseAbsenceKind 解析离岗类型代码
func ParseAbsenceKind(code string) (AbsenceKind, error) {
	k := AbsenceKind(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := absenceKindLabels[k]; !ok {
		return "", fmt.Errorf("%w: 未知离岗类型 %q", pkgerrors.ErrInvalidArgument, code)
	}
	return k, nil
}

// Label 显示名，即效力计算中 BLOCKED_ABSENT 的原因文本
func (k AbsenceKind) Label() string {
	if l, ok := absenceKindLabels[k]; ok {
		return l
	}
	return string(k)
}
