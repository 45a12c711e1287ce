package iam

import "strings"

// 管理者権限を示唆するキーワード（大文字小文字を区別する部分一致）
// 冗長な組み合わせを含むが、既存の運用に合わせて意図的にそのまま
var privilegedKeywords = []string{
	"admin",
	"fullaccess",
	"Administrator",
	"FullAccess",
	"Admin",
}

// HasPrivilegedName はポリシー名が管理者権限を示唆するか判定する
func HasPrivilegedName(policyName string) bool {
	for _, keyword := range privilegedKeywords {
		if strings.Contains(policyName, keyword) {
			return true
		}
	}
	return false
}
