package api

import "time"

// IntegrationStatus 消息集成的连接状态（服务端快照）
// IntegrationStatus is the server-reported connection state of the messaging integration
type IntegrationStatus struct {
	Connected bool   `json:"connected" yaml:"connected"`
	Phone     string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	Message   string `json:"message" yaml:"message"`
}

// Classification 服务端给出的消息分类结果
// Classification is the server-side classification attached to an item
type Classification struct {
	Category       string `json:"category" yaml:"category"`
	Priority       string `json:"priority" yaml:"priority"`
	ActionRequired bool   `json:"action_required" yaml:"action_required"`
	Summary        string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Contact        string `json:"contact,omitempty" yaml:"contact,omitempty"`
}

// Item 分类后的消息记录，本层只读
// Item is a classified message record; read-only from the client's side
type Item struct {
	ID             string          `json:"id" yaml:"id"`
	Title          string          `json:"title" yaml:"title"`
	Description    string          `json:"description,omitempty" yaml:"description,omitempty"`
	Classification *Classification `json:"classification,omitempty" yaml:"classification,omitempty"`
	Source         string          `json:"source,omitempty" yaml:"source,omitempty"`
	CreatedAt      time.Time       `json:"created_at" yaml:"created_at"`
}

// Contact returns the classified contact, or "" when the item is unclassified.
func (i Item) Contact() string {
	if i.Classification == nil {
		return ""
	}
	return i.Classification.Contact
}

// ItemsPage 分页查询结果
// ItemsPage is one page of items plus the total match count
type ItemsPage struct {
	Data  []Item `json:"data" yaml:"data"`
	Count int    `json:"count" yaml:"count"`
}

// ListItemsParams 列表查询参数；空值不会发送
// ListItemsParams are the read-items query parameters; empty values are not sent
type ListItemsParams struct {
	Skip           int
	Limit          int
	Search         string
	Category       string
	Priority       string
	Source         string
	MessageType    string
	Contact        string
	ActionRequired *bool
}

// StartAuthResponse is returned by the start-authentication call.
type StartAuthResponse struct {
	SessionKey string `json:"session_key"`
	Message    string `json:"message,omitempty"`
}

// VerifyAuthRequest completes a phone handshake. Password is only sent when set.
type VerifyAuthRequest struct {
	SessionKey string `json:"session_key"`
	Phone      string `json:"phone"`
	Code       string `json:"code"`
	Password   string `json:"password,omitempty"`
}

type startAuthRequest struct {
	Phone string `json:"phone"`
}

// AuthorizationURL 委托授权跳转地址
// AuthorizationURL carries the delegated-authorization redirect target
type AuthorizationURL struct {
	AuthorizationURL string `json:"authorization_url"`
}

// User 当前登录用户
// User is the currently authenticated dashboard user
type User struct {
	ID       string `json:"id" yaml:"id"`
	Email    string `json:"email" yaml:"email"`
	FullName string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
}

// Message is the generic success payload of mutating endpoints.
type Message struct {
	Message string `json:"message"`
}
