package dto

// SetItemRequest 写入键值
type SetItemRequest struct {
	Value           string `json:"value"`
	ExpectedVersion int64  `json:"expected_version" binding:"min=0"`
}
