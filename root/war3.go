package root

import (
	"encoding/hex"
	"strings"
)

// parseWar3 decodes the pipe-delimited text root manifest variant used by
// Warcraft III. data is the blob with the leading "War3" magic already
// stripped.
func parseWar3(data []byte) (*Manifest, error) {
	m := &Manifest{}

	text := string(data)
	lines := strings.Split(text, "\r\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 2 {
			continue
		}
		path, eKeyHex := fields[0], fields[1]
		if path == "" || eKeyHex == "" {
			continue
		}

		eKeyBytes, err := hex.DecodeString(eKeyHex)
		if err != nil {
			continue
		}
		var cKey [16]byte
		copy(cKey[:], eKeyBytes)

		hash := war3PathHash(path)
		nameHash := uint64(hash)

		var localeFlags LocaleFlags
		if len(fields) >= 3 {
			localeFlags = decodeLocaleFlagsFromName(fields[2])
		}

		normalized := normalizePath(path)
		scopes := strings.Split(path, ":")
		if len(scopes) > 0 {
			scopes = scopes[:len(scopes)-1]
		}

		m.entries = append(m.entries, RootEntry{
			FileDataID:     int64(hash),
			ContentKey:     cKey,
			NameHash:       &nameHash,
			LocaleFlags:    localeFlags,
			NormalizedPath: &normalized,
			Scopes:         scopes,
		})
	}

	return m, nil
}

// war3PathHash is the simple positive string hash used to synthesize a
// FileDataID for the War3 variant, which carries no numeric identifier.
func war3PathHash(s string) int32 {
	var h int32
	for _, c := range []byte(s) {
		h = (h << 5) - h + int32(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
