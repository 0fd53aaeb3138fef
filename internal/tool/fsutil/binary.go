package fsutil

// BinaryDetector implements binary content detection using null byte
// detection with special handling for UTF BOMs.
type BinaryDetector struct {
	SampleSize int // Number of bytes to sample for binary detection
}

// NewBinaryDetector creates a new BinaryDetector with the specified sample size.
func NewBinaryDetector(sampleSize int) *BinaryDetector {
	return &BinaryDetector{
		SampleSize: sampleSize,
	}
}

// IsBinaryContent checks if content bytes contain binary data by looking
// for null bytes. UTF-16 and UTF-32 BOMs are recognised as text to avoid
// false positives from their embedded null bytes.
func (r *BinaryDetector) IsBinaryContent(content []byte) bool {
	if len(content) >= 4 {
		if (content[0] == 0xFF && content[1] == 0xFE && content[2] == 0x00 && content[3] == 0x00) ||
			(content[0] == 0x00 && content[1] == 0x00 && content[2] == 0xFE && content[3] == 0xFF) {
			return false // UTF-32 BOM
		}
	}
	if len(content) >= 2 {
		if (content[0] == 0xFF && content[1] == 0xFE) ||
			(content[0] == 0xFE && content[1] == 0xFF) {
			return false // UTF-16 BOM
		}
	}

	sampleSize := min(len(content), r.SampleSize)
	for i := range sampleSize {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
