package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_USERS_PER_ROOM", "")
	t.Setenv("ROOM_LANGUAGES", "")
	t.Setenv("ADMIN_USERS", "")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	if cfg.MaxUsersPerRoom != 5 {
		t.Errorf("Expected default capacity 5, got %d", cfg.MaxUsersPerRoom)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "csharp" || cfg.Languages[1] != "sql" {
		t.Errorf("Expected default languages [csharp sql], got %v", cfg.Languages)
	}
	if len(cfg.AdminUsers) != 0 {
		t.Errorf("Expected no admin users by default, got %v", cfg.AdminUsers)
	}
}

func TestLoadIgnoresNonNumericCapacity(t *testing.T) {
	t.Setenv("MAX_USERS_PER_ROOM", "lots")
	cfg := Load()
	if cfg.MaxUsersPerRoom != 5 {
		t.Errorf("Expected default capacity on junk input, got %d", cfg.MaxUsersPerRoom)
	}
}

func TestParseAdminUsers(t *testing.T) {
	t.Setenv("ADMIN_USERS", "root:secret, boss:hunter2:super ,broken,:nopass,empty::super")
	cfg := Load()

	if len(cfg.AdminUsers) != 2 {
		t.Fatalf("Expected 2 admin accounts, got %d", len(cfg.AdminUsers))
	}
	if cfg.AdminUsers[0].Name != "root" || cfg.AdminUsers[0].SuperAdmin {
		t.Errorf("Expected plain admin root, got %+v", cfg.AdminUsers[0])
	}
	if cfg.AdminUsers[1].Name != "boss" || !cfg.AdminUsers[1].SuperAdmin {
		t.Errorf("Expected superadmin boss, got %+v", cfg.AdminUsers[1])
	}
	if cfg.AdminUsers[1].Password != "hunter2" {
		t.Errorf("Expected super flag stripped from password, got %q", cfg.AdminUsers[1].Password)
	}
}

func TestParseAdminUsersPasswordWithColon(t *testing.T) {
	t.Setenv("ADMIN_USERS", "dba:p:ss:w0rd,ops:se:cret:super")
	cfg := Load()

	if len(cfg.AdminUsers) != 2 {
		t.Fatalf("Expected 2 admin accounts, got %d", len(cfg.AdminUsers))
	}
	if cfg.AdminUsers[0].Password != "p:ss:w0rd" || cfg.AdminUsers[0].SuperAdmin {
		t.Errorf("Expected colon password kept intact, got %+v", cfg.AdminUsers[0])
	}
	if cfg.AdminUsers[1].Password != "se:cret" || !cfg.AdminUsers[1].SuperAdmin {
		t.Errorf("Expected superadmin with colon password, got %+v", cfg.AdminUsers[1])
	}

	if _, ok := cfg.Authenticate("dba", "p:ss:w0rd"); !ok {
		t.Error("Expected login with colon password to succeed")
	}
}

func TestAuthenticate(t *testing.T) {
	t.Setenv("ADMIN_USERS", "root:secret")
	cfg := Load()

	admin, ok := cfg.Authenticate("ROOT", "secret")
	if !ok {
		t.Fatal("Expected case-insensitive name match")
	}
	if admin.Name != "root" || admin.SuperAdmin {
		t.Errorf("Expected plain admin root, got %+v", admin)
	}

	if _, ok := cfg.Authenticate("root", "wrong"); ok {
		t.Error("Expected wrong password to be rejected")
	}
	if _, ok := cfg.Authenticate("nobody", "secret"); ok {
		t.Error("Expected unknown name to be rejected")
	}
}

func TestLanguageValidator(t *testing.T) {
	v := NewLanguageValidator([]string{" CSharp ", "sql", "SQL", ""})

	languages := v.Languages()
	if len(languages) != 2 || languages[0] != "csharp" || languages[1] != "sql" {
		t.Errorf("Expected normalized deduplicated [csharp sql], got %v", languages)
	}

	if !v.IsValid("SQL") {
		t.Error("Expected validation to be case-insensitive")
	}
	if !v.IsValid(" csharp ") {
		t.Error("Expected validation to trim input")
	}
	if v.IsValid("cobol") {
		t.Error("Expected unlisted language to be rejected")
	}
}
