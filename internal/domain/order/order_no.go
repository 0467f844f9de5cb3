package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNo 生成订单号：ORD + 年月日时分秒 + 8位随机串
// 示例：ORD20250314101502A1B2C3D4
func GenerateOrderNo() string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "ORD" + time.Now().Format("20060102150405") + random
}
