package discovery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ftcan-dash/ftcan-go/pkg/version"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeStreamTXT creates the TXT records of a stream advertisement.
func EncodeStreamTXT(info *StreamInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	v := info.Version
	if v == "" {
		v = version.Stream
	}
	txt[TXTKeyVersion] = v
	txt[TXTKeySource] = info.Source

	if info.Bus != "" {
		txt[TXTKeyBus] = info.Bus
	}
	if len(info.Families) > 0 {
		txt[TXTKeyFamilies] = strings.Join(info.Families, ",")
	}
	if info.Snapshot {
		txt[TXTKeySnapshot] = "1"
	} else {
		txt[TXTKeySnapshot] = "0"
	}
	return txt
}

// DecodeStreamTXT parses the TXT records of a stream advertisement.
// Version and source are required.
func DecodeStreamTXT(txt TXTRecordMap) (*StreamInfo, error) {
	info := &StreamInfo{}

	var ok bool
	info.Version, ok = txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	if _, err := version.Parse(info.Version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTXTRecord, err)
	}

	info.Source, ok = txt[TXTKeySource]
	if !ok || info.Source == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeySource)
	}

	info.Bus = txt[TXTKeyBus]
	if fam := txt[TXTKeyFamilies]; fam != "" {
		for _, f := range strings.Split(fam, ",") {
			if f = strings.TrimSpace(f); f != "" {
				info.Families = append(info.Families, f)
			}
		}
	}

	if s, ok := txt[TXTKeySnapshot]; ok && s != "" {
		snap, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidTXTRecord, TXTKeySnapshot, s)
		}
		info.Snapshot = snap
	}
	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			// Key without value (boolean flag)
			txt[parts[0]] = ""
		}
	}
	return txt
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameTooLong)
	}
	if len(name) > MaxInstanceNameLen {
		return ErrInstanceNameTooLong
	}
	return nil
}
