package iam

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// 固定カラム幅。幅を超える名前は切り詰めずそのまま表示する（パディングのみ省略）
const (
	roleColWidth   = 35
	policyColWidth = 70
)

// WriteReport は監査結果を固定幅テーブルで書き出す
// ヘッダー行 + 一致したポリシーを持つロール1件につき1行
func WriteReport(w io.Writer, rows []AuditRow) {
	fmt.Fprintf(w, "%s %s\n",
		runewidth.FillRight("RoleName", roleColWidth),
		runewidth.FillRight("PolicyNames", policyColWidth))

	for _, row := range rows {
		fmt.Fprintf(w, "%s %s\n",
			runewidth.FillRight(row.RoleName, roleColWidth),
			runewidth.FillRight(strings.Join(row.Policies, ", "), policyColWidth))
	}
}
