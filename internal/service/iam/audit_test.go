package iam_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	iamsvc "awsaudit/internal/service/iam"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdkiam "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockIamApi struct {
	mu           sync.Mutex
	listRoles    func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error)
	listAttached func(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error)
	listInline   func(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error)
	queriedRoles []string
}

func (m *mockIamApi) ListRoles(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
	return m.listRoles(ctx, params, optFns...)
}

func (m *mockIamApi) ListAttachedRolePolicies(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error) {
	m.mu.Lock()
	m.queriedRoles = append(m.queriedRoles, aws.ToString(params.RoleName))
	m.mu.Unlock()
	return m.listAttached(ctx, params, optFns...)
}

func (m *mockIamApi) ListRolePolicies(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error) {
	return m.listInline(ctx, params, optFns...)
}

func rolesOutput(names ...string) *sdkiam.ListRolesOutput {
	out := &sdkiam.ListRolesOutput{}
	for _, n := range names {
		out.Roles = append(out.Roles, iamtypes.Role{RoleName: aws.String(n)})
	}
	return out
}

func attachedOutput(names ...string) *sdkiam.ListAttachedRolePoliciesOutput {
	out := &sdkiam.ListAttachedRolePoliciesOutput{}
	for _, n := range names {
		out.AttachedPolicies = append(out.AttachedPolicies, iamtypes.AttachedPolicy{PolicyName: aws.String(n)})
	}
	return out
}

func inlineOutput(names ...string) *sdkiam.ListRolePoliciesOutput {
	return &sdkiam.ListRolePoliciesOutput{PolicyNames: names}
}

func TestCollectAdminRoles(t *testing.T) {
	t.Run("only roles with matching policies produce rows", func(t *testing.T) {
		m := &mockIamApi{
			listRoles: func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
				return rolesOutput("power-role", "admin-role"), nil
			},
			listAttached: func(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error) {
				if aws.ToString(params.RoleName) == "power-role" {
					return attachedOutput("PowerUserAccess"), nil
				}
				return attachedOutput("AdminPolicy"), nil
			},
			listInline: func(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error) {
				return inlineOutput(), nil
			},
		}

		rows, err := iamsvc.CollectAdminRoles(m, iamsvc.AuditOptions{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "admin-role", rows[0].RoleName)
		assert.Equal(t, []string{"AdminPolicy"}, rows[0].Policies)
	})

	t.Run("role without policies produces no row", func(t *testing.T) {
		m := &mockIamApi{
			listRoles: func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
				return rolesOutput("empty-role"), nil
			},
			listAttached: func(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error) {
				return attachedOutput(), nil
			},
			listInline: func(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error) {
				return inlineOutput(), nil
			},
		}

		rows, err := iamsvc.CollectAdminRoles(m, iamsvc.AuditOptions{})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("attached matches come before inline matches", func(t *testing.T) {
		m := &mockIamApi{
			listRoles: func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
				return rolesOutput("ops-role"), nil
			},
			listAttached: func(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error) {
				return attachedOutput("ReadOnlyAccess", "AdministratorAccess"), nil
			},
			listInline: func(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error) {
				return inlineOutput("inline-admin-policy", "inline-logging"), nil
			},
		}

		rows, err := iamsvc.CollectAdminRoles(m, iamsvc.AuditOptions{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, []string{"AdministratorAccess", "inline-admin-policy"}, rows[0].Policies)
	})

	t.Run("rows are sorted by role name", func(t *testing.T) {
		m := &mockIamApi{
			listRoles: func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
				return rolesOutput("zeta-role", "alpha-role", "mid-role"), nil
			},
			listAttached: func(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error) {
				return attachedOutput("AdminPolicy"), nil
			},
			listInline: func(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error) {
				return inlineOutput(), nil
			},
		}

		rows, err := iamsvc.CollectAdminRoles(m, iamsvc.AuditOptions{Workers: 3})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "alpha-role", rows[0].RoleName)
		assert.Equal(t, "mid-role", rows[1].RoleName)
		assert.Equal(t, "zeta-role", rows[2].RoleName)
	})

	t.Run("excluded roles are not queried", func(t *testing.T) {
		m := &mockIamApi{
			listRoles: func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
				return rolesOutput("AWSServiceRoleForECS", "app-role"), nil
			},
			listAttached: func(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error) {
				return attachedOutput("AdminPolicy"), nil
			},
			listInline: func(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error) {
				return inlineOutput(), nil
			},
		}

		rows, err := iamsvc.CollectAdminRoles(m, iamsvc.AuditOptions{Exclude: []string{"AWSServiceRoleFor"}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "app-role", rows[0].RoleName)
		assert.Equal(t, []string{"app-role"}, m.queriedRoles)
	})

	t.Run("glob exclude patterns work", func(t *testing.T) {
		m := &mockIamApi{
			listRoles: func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
				return rolesOutput("test-role-1", "prod-role"), nil
			},
			listAttached: func(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error) {
				return attachedOutput("AdminPolicy"), nil
			},
			listInline: func(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error) {
				return inlineOutput(), nil
			},
		}

		rows, err := iamsvc.CollectAdminRoles(m, iamsvc.AuditOptions{Exclude: []string{"test-*"}})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "prod-role", rows[0].RoleName)
	})
}

func TestCollectAdminRolesErrors(t *testing.T) {
	okAttached := func(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error) {
		return attachedOutput("AdminPolicy"), nil
	}
	okInline := func(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error) {
		return inlineOutput(), nil
	}

	t.Run("ListRoles failure aborts with ErrListRoles", func(t *testing.T) {
		m := &mockIamApi{
			listRoles: func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
				return nil, fmt.Errorf("AccessDenied")
			},
		}

		rows, err := iamsvc.CollectAdminRoles(m, iamsvc.AuditOptions{})
		require.ErrorIs(t, err, iamsvc.ErrListRoles)
		assert.Nil(t, rows)
	})

	t.Run("attached policy failure aborts with ErrListAttachedPolicies", func(t *testing.T) {
		m := &mockIamApi{
			listRoles: func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
				return rolesOutput("admin-role"), nil
			},
			listAttached: func(ctx context.Context, params *sdkiam.ListAttachedRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListAttachedRolePoliciesOutput, error) {
				return nil, fmt.Errorf("Throttling")
			},
			listInline: okInline,
		}

		rows, err := iamsvc.CollectAdminRoles(m, iamsvc.AuditOptions{})
		require.ErrorIs(t, err, iamsvc.ErrListAttachedPolicies)
		assert.Contains(t, err.Error(), "admin-role")
		assert.Nil(t, rows)
	})

	t.Run("inline policy failure aborts with ErrListInlinePolicies", func(t *testing.T) {
		m := &mockIamApi{
			listRoles: func(ctx context.Context, params *sdkiam.ListRolesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolesOutput, error) {
				return rolesOutput("admin-role"), nil
			},
			listAttached: okAttached,
			listInline: func(ctx context.Context, params *sdkiam.ListRolePoliciesInput, optFns ...func(*sdkiam.Options)) (*sdkiam.ListRolePoliciesOutput, error) {
				return nil, fmt.Errorf("Throttling")
			},
		}

		rows, err := iamsvc.CollectAdminRoles(m, iamsvc.AuditOptions{})
		require.ErrorIs(t, err, iamsvc.ErrListInlinePolicies)
		assert.Nil(t, rows)
	})

	t.Run("nil client is rejected", func(t *testing.T) {
		_, err := iamsvc.CollectAdminRoles(nil, iamsvc.AuditOptions{})
		require.Error(t, err)
	})
}
