package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"beacon-core/internal/bootstrap"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "执行一次完整检测周期并输出 JSON 报告",
	Long: `执行一次 Sync -> Analyze -> Notify。
默认只把告警写进日志；加 --notify 后按配置真正发送邮件。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		send, _ := cmd.Flags().GetBool("notify")
		if !send {
			cfg.Notify.Mode = "log"
		}

		b, closer, err := bootstrap.NewBeacon(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		defer closer()

		report, detectErr := b.Detect(cmd.Context())

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		return detectErr
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("notify", false, "按配置发送告警 (默认只写日志)")
}
