package deviceinfo

const (
	// PlatformAndroid 默认平台名
	PlatformAndroid = "Android"
	// PlatformAmazonFireOS Amazon 设备上的平台名
	PlatformAmazonFireOS = "amazon-fireos"

	amazonManufacturer = "Amazon"
)

// ResolvePlatform 根据厂商名决定平台名。
// 只有厂商名与 "Amazon" 完全相等时返回 PlatformAmazonFireOS，其余一律 PlatformAndroid。
func ResolvePlatform(manufacturer string) string {
	if manufacturer == amazonManufacturer {
		return PlatformAmazonFireOS
	}
	return PlatformAndroid
}
