package cmd

import (
	"fmt"

	s3svc "awsaudit/internal/service/s3"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/cobra"
)

var (
	s3Client *awss3.Client
	// restore / restore-status flags
	s3Bucket         string
	s3Prefix         string
	s3RestoreDays    int32
	s3RestoreTier    string
	s3RestoreWorkers int
)

// S3Cmd represents the s3 command
var S3Cmd = &cobra.Command{
	Use:   "s3",
	Short: "S3リソース操作コマンド",
	Long:  `S3リソースに関する操作コマンド群です。Glacier階層オブジェクトの復元リクエストとステータス確認に対応しています。`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 親のPersistentPreRunEを実行（awsCtx設定とAWS設定読み込み）
		if err := RootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}

		// S3クライアントを初期化
		s3Client = awss3.NewFromConfig(awsCfg)
		return nil
	},
}

var s3RestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Glacier階層オブジェクトの復元をリクエスト",
	Long: `指定したバケット/プレフィックス配下のGlacier階層オブジェクト
（GLACIER / DEEP_ARCHIVE / GLACIER_IR）に復元リクエストを発行します。

Expeditedティアが利用できない場合はStandardティアに自動で切り替えます。

例:
  ` + AppName + ` s3 restore -b my-bucket -p images/
  ` + AppName + ` s3 restore -b my-bucket -p images/ --days 7 --tier Standard
  ` + AppName + ` s3 restore -b my-bucket -p images/ -w 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, err := parseRestoreTier(s3RestoreTier)
		if err != nil {
			return err
		}
		return s3svc.RestoreObjects(s3Client, s3svc.RestoreOptions{
			Bucket:  s3Bucket,
			Prefix:  s3Prefix,
			Days:    s3RestoreDays,
			Tier:    tier,
			Workers: s3RestoreWorkers,
		})
	},
	SilenceUsage: true,
}

var s3RestoreStatusCmd = &cobra.Command{
	Use:   "restore-status",
	Short: "Glacier復元ステータスを確認",
	Long: `指定したバケット/プレフィックス配下のGlacier階層オブジェクトの
復元ステータスを確認し、サマリーを表示します。

例:
  ` + AppName + ` s3 restore-status -b my-bucket -p images/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := s3svc.CheckRestoreStatus(s3Client, s3svc.StatusOptions{
			Bucket:  s3Bucket,
			Prefix:  s3Prefix,
			Workers: s3RestoreWorkers,
		})
		if err != nil {
			return err
		}
		s3svc.PrintStatusSummary(summary)
		return nil
	},
	SilenceUsage: true,
}

// parseRestoreTier は--tierフラグの値をSDKのティア型に変換する
func parseRestoreTier(s string) (s3types.Tier, error) {
	switch s {
	case "Expedited":
		return s3types.TierExpedited, nil
	case "Standard":
		return s3types.TierStandard, nil
	case "Bulk":
		return s3types.TierBulk, nil
	}
	return "", fmt.Errorf("❌ 不正なティア指定です: %s（Expedited / Standard / Bulk のいずれかを指定してください）", s)
}

func init() {
	RootCmd.AddCommand(S3Cmd)
	S3Cmd.AddCommand(s3RestoreCmd)
	S3Cmd.AddCommand(s3RestoreStatusCmd)

	for _, c := range []*cobra.Command{s3RestoreCmd, s3RestoreStatusCmd} {
		c.Flags().StringVarP(&s3Bucket, "bucket", "b", "", "S3バケット名（必須）")
		c.Flags().StringVarP(&s3Prefix, "prefix", "p", "", "S3プレフィックス（必須）")
		c.Flags().IntVarP(&s3RestoreWorkers, "workers", "w", 10, "並列実行数")
		_ = c.MarkFlagRequired("bucket")
		_ = c.MarkFlagRequired("prefix")
	}

	s3RestoreCmd.Flags().Int32Var(&s3RestoreDays, "days", 2, "復元データの保持日数")
	s3RestoreCmd.Flags().StringVar(&s3RestoreTier, "tier", "Expedited", "復元ティア（Expedited / Standard / Bulk）")
}
