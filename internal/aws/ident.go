package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// CallerIdentityApi はアカウント確認に必要なSTS操作のみを切り出したインターフェース
type CallerIdentityApi interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// GetCallerAccount は現在の認証情報のAWSアカウントIDを返す
// 認証情報が無効な場合はここで失敗する（監査実行前のチェックを兼ねる）
func GetCallerAccount(client CallerIdentityApi) (string, error) {
	out, err := client.GetCallerIdentity(context.Background(), &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("呼び出し元アカウントの確認に失敗: %w", err)
	}
	return aws.ToString(out.Account), nil
}
