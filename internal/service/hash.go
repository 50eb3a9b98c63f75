package service

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeMessage 规范化消息文本：去首尾空白、内部空白折叠为单个空格、转小写。
// 幂等判定只看规范化后的内容，"  Buy milk  " 和 "buy milk" 是同一条消息。
func NormalizeMessage(message string) string {
	return strings.ToLower(whitespaceRE.ReplaceAllString(strings.TrimSpace(message), " "))
}

// MessageDigest 计算规范化消息的 sha256 摘要（十六进制），作为幂等缓存的键
func MessageDigest(message string) string {
	sum := sha256.Sum256([]byte(NormalizeMessage(message)))
	return hex.EncodeToString(sum[:])
}
