package qrcode

import (
	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

// GenerateQRCode สร้าง QR Code จากข้อมูลที่กำหนด คืนค่าเป็น PNG
func GenerateQRCode(data string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(data, qrcode.Medium, size)
}
