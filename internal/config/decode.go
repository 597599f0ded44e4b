package config

import (
	"strings"

	"dirsort/internal/errors"

	"github.com/spf13/cast"
)

// Store keys, shared by every encoding.
const (
	keyTargetDir       = "Target_Dir"
	keySortedDir       = "Sorted_Dir"
	keySortType        = "Sort_Type"
	keySortMode        = "Sort_Mode"
	keyIgnoreNames     = "Ignore_Names"
	keyIgnoreTypes     = "Ignore_Types"
	keyIgnorePatterns  = "Ignore_Patterns"
	keyDeleteEmptyDirs = "Delete_Empty_Dirs"
	keyLock            = "Lock"
	keyLockPID         = "Lock_PID"
)

// recordFromMap builds a Record from a decoded store document. Hand-edited
// stores are accepted loosely: Lock_PID may be a number and
// Delete_Empty_Dirs may be any truthy scalar. Unknown keys are ignored.
func recordFromMap(doc map[string]interface{}) (Record, error) {
	var rec Record
	var err error
	text := func(key string) string {
		if err != nil {
			return ""
		}
		var s string
		if s, err = toText(doc[key]); err != nil {
			err = errors.Wrapf(err, "%s", key)
		}
		return s
	}
	list := func(key string) []string {
		if err != nil {
			return nil
		}
		var l []string
		if l, err = toTextList(doc[key]); err != nil {
			err = errors.Wrapf(err, "%s", key)
		}
		return l
	}

	rec.TargetDir = text(keyTargetDir)
	rec.SortedDir = text(keySortedDir)
	rec.SortType = text(keySortType)
	rec.SortMode = text(keySortMode)
	rec.IgnoreNames = list(keyIgnoreNames)
	rec.IgnoreTypes = list(keyIgnoreTypes)
	rec.IgnorePatterns = list(keyIgnorePatterns)
	rec.Lock = text(keyLock)
	rec.LockPID = text(keyLockPID)
	if err != nil {
		return Record{}, err
	}
	if rec.DeleteEmptyDirs, err = truthy(doc[keyDeleteEmptyDirs]); err != nil {
		return Record{}, errors.Wrapf(err, "%s", keyDeleteEmptyDirs)
	}
	return rec, nil
}

// toText accepts strings and plain scalars. Numbers keep their integer form,
// so a PID written as 1234 reads back as "1234".
func toText(v interface{}) (string, error) {
	switch v.(type) {
	case nil:
		return "", nil
	case map[string]interface{}, []interface{}:
		return "", errors.Newf("expected a single value, got %T", v)
	}
	return cast.ToStringE(v)
}

func toTextList(v interface{}) ([]string, error) {
	switch l := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return l, nil
	case []interface{}:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, err := toText(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.Newf("expected a list, got %T", v)
}

// truthy reads a flag. Besides booleans it takes numbers (nonzero is true)
// and the usual yes/no spellings.
func truthy(v interface{}) (bool, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "":
			return false, nil
		case "yes", "y", "on":
			return true, nil
		case "no", "n", "off":
			return false, nil
		}
	}
	if v == nil {
		return false, nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, errors.Newf("expected true or false, got %v", v)
	}
	return b, nil
}
