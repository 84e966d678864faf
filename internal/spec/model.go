package spec

type ColumnDefinition struct {
	Name       string `json:"name"`
	Type       string `json:"type"` // free-form, e.g. "varchar(120)", "serial"
	PrimaryKey bool   `json:"primaryKey"`
	References string `json:"references,omitempty"` // "table.column"
	NotNull    bool   `json:"notNull"`
	Default    string `json:"default,omitempty"`
}

type TableDefinition struct {
	Name    string             `json:"name"`
	Columns []ColumnDefinition `json:"columns"`
}

// ModuleDefinition groups the tables of one generated application module.
// Purely a batching construct; it carries no invariants of its own.
type ModuleDefinition struct {
	Name   string            `json:"name"`
	Tables []TableDefinition `json:"tables"`
}

// ProvisioningResult is produced once per provisioning call and is not
// persisted anywhere; callers keep whatever part of it they need.
type ProvisioningResult struct {
	Success bool     `json:"success"`
	Tables  []string `json:"tables"` // logical names created successfully
	Errors  []string `json:"errors"`
}

// 리포트용 구조체
type DropResult struct {
	Success bool     `json:"success"`
	Dropped []string `json:"dropped"`
}

type InsertResult struct {
	Success   bool `json:"success"`
	Requested int  `json:"requested"`
	Inserted  int  `json:"inserted"`
}

type TableData struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}
