package spec

import "testing"

func TestParse(t *testing.T) {
	data := []byte(`{
		"project": "crm_demo",
		"modules": [
			{
				"name": "crm",
				"tables": [
					{
						"name": "customers",
						"columns": [
							{"name": "id", "type": "serial", "primaryKey": true},
							{"name": "name", "type": "varchar(120)", "notNull": true},
							{"name": "status", "type": "varchar(20)", "default": "'active'"},
							{"name": "region_id", "type": "integer", "references": "regions.id"}
						]
					}
				]
			}
		]
	}`)

	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Project != "crm_demo" {
		t.Errorf("Expected project crm_demo, got %s", s.Project)
	}
	if len(s.Modules) != 1 || len(s.Modules[0].Tables) != 1 {
		t.Fatalf("Unexpected shape: %+v", s)
	}

	cols := s.Modules[0].Tables[0].Columns
	if len(cols) != 4 {
		t.Fatalf("Expected 4 columns, got %d", len(cols))
	}
	if !cols[0].PrimaryKey || cols[0].Type != "serial" {
		t.Errorf("Primary key column not decoded: %+v", cols[0])
	}
	if !cols[1].NotNull {
		t.Errorf("notNull not decoded: %+v", cols[1])
	}
	if cols[2].Default != "'active'" {
		t.Errorf("default not decoded: %+v", cols[2])
	}
	if cols[3].References != "regions.id" {
		t.Errorf("references not decoded: %+v", cols[3])
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
	if _, err := Parse([]byte(`{"project": "x", "modules": []}`)); err == nil {
		t.Error("Expected error for empty modules")
	}
}
