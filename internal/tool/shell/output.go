package shell

import (
	"bytes"
)

// binaryDetector reports whether sampled command output looks binary.
type binaryDetector interface {
	IsBinaryContent(content []byte) bool
}

// collector captures command output with a size limit and binary content
// detection. Binary output is replaced with a placeholder rather than fed
// to the model.
type collector struct {
	buffer    bytes.Buffer
	detector  binaryDetector
	maxBytes  int
	truncated bool
	isBinary  bool

	bytesChecked int
	sampleSize   int
}

func newCollector(detector binaryDetector, maxBytes, sampleSize int) *collector {
	return &collector{
		detector:   detector,
		maxBytes:   maxBytes,
		sampleSize: sampleSize,
	}
}

func (c *collector) Write(p []byte) (n int, err error) {
	if c.isBinary {
		return len(p), nil
	}

	if c.bytesChecked < c.sampleSize {
		toCheck := p
		if remaining := c.sampleSize - c.bytesChecked; len(toCheck) > remaining {
			toCheck = toCheck[:remaining]
		}

		if c.detector.IsBinaryContent(toCheck) {
			c.isBinary = true
			c.truncated = true
			return len(p), nil
		}
		c.bytesChecked += len(toCheck)
	}

	remainingSpace := c.maxBytes - c.buffer.Len()
	if remainingSpace <= 0 {
		c.truncated = true
		return len(p), nil
	}

	toWrite := p
	if len(toWrite) > remainingSpace {
		toWrite = toWrite[:remainingSpace]
		c.truncated = true
	}

	if _, err := c.buffer.Write(toWrite); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *collector) String() string {
	if c.isBinary {
		return "[Binary Content]"
	}
	return c.buffer.String()
}

func (c *collector) Truncated() bool {
	return c.truncated
}
