package iam

import (
	"context"
	"errors"

	sdkiam "github.com/aws/aws-sdk-go-v2/service/iam"
)

// RolesApi は監査に必要なIAM読み取り操作のみを切り出したインターフェース
type RolesApi interface {
	ListRoles(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error)
	ListAttachedRolePolicies(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error)
	ListRolePolicies(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error)
}

// 失敗したAPI呼び出しを呼び出し元が判別できるようにするためのエラー種別
var (
	ErrListRoles            = errors.New("ListRoles 失敗")
	ErrListAttachedPolicies = errors.New("ListAttachedRolePolicies 失敗")
	ErrListInlinePolicies   = errors.New("ListRolePolicies 失敗")
)

// AuditOptions は管理者権限ポリシー監査のオプション
type AuditOptions struct {
	Exclude []string // 除外パターン（ロール名、部分一致またはglob）
	Workers int      // 並列実行数（0以下はデフォルト8）
}

// AuditRow は監査結果の1行分（1ロール + 一致したポリシー名）
type AuditRow struct {
	RoleName string
	Policies []string // アタッチ→インラインの順、API返却順を保持
}
