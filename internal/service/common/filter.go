package common

import (
	"strings"

	"github.com/gobwas/glob"
)

// MatchPattern はパターンマッチングを行う
// ワイルドカード（*）を含む場合はglob形式でマッチング、
// 含まない場合は部分一致で判定する
func MatchPattern(name, pattern string) bool {
	if strings.Contains(pattern, "*") {
		g, err := glob.Compile(pattern)
		if err != nil {
			return false
		}
		return g.Match(name)
	}
	return strings.Contains(name, pattern)
}

// MatchesAnyPattern はいずれかのパターンに一致するか判定する
// 空のパターンは無視する
func MatchesAnyPattern(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if MatchPattern(name, pattern) {
			return true
		}
	}
	return false
}
