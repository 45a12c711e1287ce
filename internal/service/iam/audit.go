package iam

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"awsaudit/internal/service/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdkiam "github.com/aws/aws-sdk-go-v2/service/iam"
)

const defaultAuditWorkers = 8

// CollectAdminRoles は全IAMロールを列挙し、管理者権限を示唆する名前の
// ポリシー（管理ポリシー + インラインポリシー）を持つロールを収集する。
// いずれかのAPI呼び出しが失敗した場合は結果を返さずエラーで中断する。
func CollectAdminRoles(client RolesApi, opts AuditOptions) ([]AuditRow, error) {
	if client == nil {
		return nil, fmt.Errorf("iam client is nil")
	}

	roleNames, err := listRoleNames(client, opts.Exclude)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultAuditWorkers
	}
	if len(roleNames) < workers {
		workers = len(roleNames)
	}
	if workers < 1 {
		workers = 1
	}

	// ロールごとのポリシー取得は独立しているため並列化する
	exec := common.NewParallelExecutor(workers)
	var mu sync.Mutex
	var rows []AuditRow
	var firstErr error

	for _, roleName := range roleNames {
		name := roleName
		exec.Execute(func() {
			matched, err := listPrivilegedPolicies(client, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if len(matched) > 0 {
				rows = append(rows, AuditRow{RoleName: name, Policies: matched})
			}
		})
	}
	exec.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	// 並列収集で順序が崩れるため、出力を決定的にするようロール名でソート
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].RoleName < rows[j].RoleName
	})

	return rows, nil
}

// listRoleNames は全ロール名を取得し、除外パターンに一致するものを外す
func listRoleNames(client RolesApi, exclude []string) ([]string, error) {
	out, err := client.ListRoles(context.Background(), &sdkiam.ListRolesInput{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListRoles, err)
	}

	var names []string
	for _, role := range out.Roles {
		name := aws.ToString(role.RoleName)
		if common.MatchesAnyPattern(name, exclude) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// listPrivilegedPolicies は1ロールのポリシー名を取得してフィルタする
// アタッチ済み管理ポリシー → インラインポリシーの順（各API返却順を保持）
func listPrivilegedPolicies(client RolesApi, roleName string) ([]string, error) {
	var matched []string

	attached, err := client.ListAttachedRolePolicies(context.Background(), &sdkiam.ListAttachedRolePoliciesInput{
		RoleName: aws.String(roleName),
	})
	if err != nil {
		return nil, fmt.Errorf("%w (ロール %s): %v", ErrListAttachedPolicies, roleName, err)
	}
	for _, policy := range attached.AttachedPolicies {
		if name := aws.ToString(policy.PolicyName); HasPrivilegedName(name) {
			matched = append(matched, name)
		}
	}

	inline, err := client.ListRolePolicies(context.Background(), &sdkiam.ListRolePoliciesInput{
		RoleName: aws.String(roleName),
	})
	if err != nil {
		return nil, fmt.Errorf("%w (ロール %s): %v", ErrListInlinePolicies, roleName, err)
	}
	for _, name := range inline.PolicyNames {
		if HasPrivilegedName(name) {
			matched = append(matched, name)
		}
	}

	return matched, nil
}
