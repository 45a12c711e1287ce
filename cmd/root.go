package cmd

import (
	"errors"
	"os"

	awsinternal "awsaudit/internal/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"
)

// AppName はCLIのコマンド名
const AppName = "awsaudit"

var (
	region  string
	profile string
	awsCtx  awsinternal.Context
	awsCfg  aws.Config
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   AppName,
	Short: "AWSリソースの監査・運用補助ツール",
	Long: `AWSリソースの監査・運用補助を行うCLIツールです。

IAMロールの管理者権限ポリシー監査と、S3 Glacier階層オブジェクトの
復元リクエスト/ステータス確認に対応しています。`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&region, "region", "R", "ap-northeast-1", "AWSリージョン")
	RootCmd.PersistentFlags().StringVarP(&profile, "profile", "P", "", "AWSプロファイル")

	// コマンド実行前に共通でプロファイルチェックとAWS設定読み込みを行う
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// ヘルプ/バージョンコマンドの場合はスキップ
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		if err := checkAndSetProfile(cmd); err != nil {
			return err
		}

		awsCtx = awsinternal.Context{Profile: profile, Region: region}
		cfg, err := awsCtx.GetConfig()
		if err != nil {
			cmd.SilenceUsage = true
			return err
		}
		awsCfg = cfg
		return nil
	}
}

// checkAndSetProfile はプロファイルの確認と設定を行うプライベート関数
func checkAndSetProfile(cmd *cobra.Command) error {
	// プロファイルがすでに指定されている場合は何もしない
	if profile != "" {
		return nil
	}
	// 環境変数からプロファイル取得を試みる
	envProfile := os.Getenv("AWS_PROFILE")
	if envProfile == "" {
		// プロファイルが見つからない場合はエラー
		cmd.SilenceUsage = true // エラー時のUsage表示を抑制
		return errors.New("❌ エラー: プロファイルが指定されていません。-Pオプションまたは AWS_PROFILE 環境変数を指定してください")
	}
	// 環境変数からプロファイルを設定
	profile = envProfile
	cmd.Println("🔍 環境変数 AWS_PROFILE の値 '" + profile + "' を使用します")
	return nil
}
