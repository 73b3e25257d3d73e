package port

import "context"

// ImageRequest 图像生成请求，Reference 为可选参考图
type ImageRequest struct {
	Prompt        string
	Reference     []byte
	ReferenceMIME string
}

// Image 生成结果
type Image struct {
	Data     []byte
	MIMEType string
}

// ImageGenerator 图像模型的最小依赖（port）
type ImageGenerator interface {
	Generate(ctx context.Context, req ImageRequest) (*Image, error)
}
