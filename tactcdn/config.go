package tactcdn

import "strings"

// listValuedKeys are config keys whose value is a space-separated list
// rather than a scalar string.
var listValuedKeys = map[string]bool{
	"archives":       true,
	"patch-archives": true,
	"builds":         true,
	"encoding-size":  true,
}

// ConfigFile is a parsed build/CDN config blob: a flat key=value document
// where some keys carry space-separated lists.
type ConfigFile struct {
	scalars map[string]string
	lists   map[string][]string
}

// Get returns the scalar value for key.
func (c *ConfigFile) Get(key string) (string, bool) {
	v, ok := c.scalars[key]
	return v, ok
}

// GetList returns the list value for key.
func (c *ConfigFile) GetList(key string) ([]string, bool) {
	v, ok := c.lists[key]
	return v, ok
}

// ParseConfig implements the "key = value" config line format: whitespace
// around both key and value is stripped; list-valued keys are split on
// whitespace.
func ParseConfig(body string) *ConfigFile {
	return parseConfig(body)
}

func parseConfig(body string) *ConfigFile {
	c := &ConfigFile{
		scalars: make(map[string]string),
		lists:   make(map[string][]string),
	}

	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])

		if listValuedKeys[key] {
			c.lists[key] = strings.Fields(value)
		} else {
			c.scalars[key] = value
		}
	}
	return c
}
