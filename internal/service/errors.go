package service

import (
	"errors"
)

// 管线错误的两个可区分类别，调用方用 errors.Is 判断是否可安全重试：
//   - ErrInterpretation：外部解析服务失败。此时还没有任何写入，重试总是安全的。
//   - ErrStore：原子提交阶段失败。事务保证没有半截状态残留。
var (
	ErrInterpretation = errors.New("interpretation failed")
	ErrStore          = errors.New("store failed")
)
