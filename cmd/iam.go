package cmd

import (
	"fmt"
	"os"

	awsinternal "awsaudit/internal/aws"
	"awsaudit/internal/service/common"
	iamsvc "awsaudit/internal/service/iam"

	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"
)

var (
	iamClient *awsiam.Client
	stsClient *sts.Client
	// audit flags
	iamAuditExclude []string
	iamAuditWorkers int
)

// IamCmd represents the iam command
var IamCmd = &cobra.Command{
	Use:   "iam",
	Short: "IAMリソース監査コマンド",
	Long:  `IAMリソースに関する監査コマンド群です。管理者権限を示唆するポリシーを持つロールの検出に対応しています。`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 親のPersistentPreRunEを実行（awsCtx設定とAWS設定読み込み）
		if err := RootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}

		// IAM/STSクライアントを初期化
		iamClient = awsiam.NewFromConfig(awsCfg)
		stsClient = sts.NewFromConfig(awsCfg)
		return nil
	},
}

var iamAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "管理者権限ポリシーを持つIAMロールを検出",
	Long: `全IAMロールを対象に、管理者権限を示唆する名前のポリシー
（アタッチ済み管理ポリシー / インラインポリシー）を検出して一覧表示します。

ポリシー名の判定は admin / fullaccess / Administrator / FullAccess / Admin の
部分一致（大文字小文字を区別）です。

例:
  ` + AppName + ` iam audit                        # 全ロールを監査
  ` + AppName + ` iam audit -x AWSServiceRoleFor   # 除外パターン指定
  ` + AppName + ` iam audit -w 16                  # 並列数を変更`,
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := awsinternal.GetCallerAccount(stsClient)
		if err != nil {
			return err
		}
		fmt.Printf("🔍 アカウント %s のIAMロールを監査します\n\n", account)

		rows, err := iamsvc.CollectAdminRoles(iamClient, iamsvc.AuditOptions{
			Exclude: iamAuditExclude,
			Workers: iamAuditWorkers,
		})
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Println(common.FormatEmptyMessage("管理者権限ポリシーを持つロール"))
			return nil
		}

		iamsvc.WriteReport(os.Stdout, rows)
		fmt.Printf("\n⚠️  %d個のロールが管理者権限ポリシーを保持しています\n", len(rows))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(IamCmd)
	IamCmd.AddCommand(iamAuditCmd)

	iamAuditCmd.Flags().StringSliceVarP(&iamAuditExclude, "exclude", "x", []string{}, "除外パターン（ロール名に含む文字列またはglob、複数指定可）")
	iamAuditCmd.Flags().IntVarP(&iamAuditWorkers, "workers", "w", 8, "ポリシー取得の並列実行数")
}
