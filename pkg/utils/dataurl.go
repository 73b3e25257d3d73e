package utils

import (
	"encoding/base64"
	"strings"
)

// DefaultImageMIME 未声明类型时的图像 MIME
const DefaultImageMIME = "image/png"

// DataURL 生成 data:<mime>;base64,<payload>
func DataURL(mime string, data []byte) string {
	if mime == "" {
		mime = DefaultImageMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// SplitDataURL 拆出 MIME 与 base64 负载；不是 data URL 时按纯 base64 处理
func SplitDataURL(s string) (mime string, payload string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", s
	}
	header, body, ok := strings.Cut(s, ",")
	if !ok {
		return "", ""
	}
	header = strings.TrimPrefix(header, "data:")
	header = strings.TrimSuffix(header, ";base64")
	return header, body
}

// DecodeBase64Image 解码 data URL 或纯 base64，失败返回 nil
func DecodeBase64Image(s string) ([]byte, string) {
	mime, payload := SplitDataURL(s)
	if payload == "" {
		return nil, mime
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, mime
	}
	return data, mime
}
