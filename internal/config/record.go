package config

// Record is the persisted configuration. The field names match the keys of
// the store in every supported encoding.
type Record struct {
	TargetDir       string   `json:"Target_Dir" yaml:"Target_Dir" toml:"Target_Dir"`
	SortedDir       string   `json:"Sorted_Dir" yaml:"Sorted_Dir" toml:"Sorted_Dir"`
	SortType        string   `json:"Sort_Type" yaml:"Sort_Type" toml:"Sort_Type"`
	SortMode        string   `json:"Sort_Mode" yaml:"Sort_Mode" toml:"Sort_Mode"`
	IgnoreNames     []string `json:"Ignore_Names" yaml:"Ignore_Names" toml:"Ignore_Names"`
	IgnoreTypes     []string `json:"Ignore_Types" yaml:"Ignore_Types" toml:"Ignore_Types"`
	IgnorePatterns  []string `json:"Ignore_Patterns,omitempty" yaml:"Ignore_Patterns,omitempty" toml:"Ignore_Patterns,omitempty"`
	DeleteEmptyDirs bool     `json:"Delete_Empty_Dirs" yaml:"Delete_Empty_Dirs" toml:"Delete_Empty_Dirs"`
	Lock            string   `json:"Lock" yaml:"Lock" toml:"Lock"`
	LockPID         string   `json:"Lock_PID" yaml:"Lock_PID" toml:"Lock_PID"`
}

// LockState returns the lock fields of the record.
func (r Record) LockState() LockState {
	return LockState{Entry: r.Lock, PID: r.LockPID}
}

// WithLock returns a copy of r carrying the given lock state.
func (r Record) WithLock(s LockState) Record {
	r.Lock = s.Entry
	r.LockPID = s.PID
	return r
}
