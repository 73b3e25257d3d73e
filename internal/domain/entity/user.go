package entity

// User 会话中的用户身份
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Session 身份查询结果
type Session struct {
	Authenticated bool   `json:"authenticated"`
	User          *User  `json:"user"`
	Message       string `json:"message"`
}

// UID 匿名会话返回空串
func (s *Session) UID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.UID
}
