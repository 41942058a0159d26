package auth

import (
	"encoding/json"
	"testing"
)

func TestIsAuthenticated(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"", false},
		{"   ", false},
		{"\t\n", false},
		{"abc", true},
		{"Bearer abc", true},
		{" x ", true},
	}
	for _, tt := range tests {
		if got := IsAuthenticated(tt.token); got != tt.want {
			t.Errorf("IsAuthenticated(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name  string
		roles Roles
		want  bool
	}{
		{"nil", nil, false},
		{"empty", Roles{}, false},
		{"exact", Roles{{Nome: "admin"}}, true},
		{"portuguese", Roles{{Nome: "Administrador"}}, true},
		{"suffix", Roles{{Nome: "admin_readonly"}}, true},
		{"plural", Roles{{Nome: "Admins"}}, true},
		{"abbreviation", Roles{{Nome: "Adm"}}, false},
		{"user only", Roles{{Nome: "user"}}, false},
		{"mixed", Roles{{Nome: "user"}, {Nome: "ADMIN"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAdmin(tt.roles); got != tt.want {
				t.Fatalf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasAnyRole_IsExact(t *testing.T) {
	id := Identity{Roles: Roles{{Nome: "Administrador"}}}
	if HasAnyRole(id, "admin") {
		t.Fatal("substring must not satisfy an exact role requirement")
	}
	if !HasAnyRole(id, "user", "Administrador") {
		t.Fatal("expected exact match")
	}
	if HasAnyRole(Identity{}, "admin") {
		t.Fatal("identity without roles matched")
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc.def": "abc.def",
		"bearer abc":     "abc",
		"BEARER   abc  ": "abc",
		"abc":            "abc",
		"  abc ":         "abc",
		"Bearerabc":      "Bearerabc",
		"":               "",
	}
	for in, want := range tests {
		if got := BearerToken(in); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRoles_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"array", `{"roles":[{"id":1,"nome":"admin","descricao":"x"},{"id":2,"nome":"user"}]}`, []string{"admin", "user"}},
		{"single object", `{"roles":{"id":1,"nome":"admin","descricao":"x"}}`, []string{"admin"}},
		{"null", `{"roles":null}`, []string{}},
		{"empty array", `{"roles":[]}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id Identity
			if err := json.Unmarshal([]byte(tt.body), &id); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got := id.Roles.Names()
			if len(got) != len(tt.want) {
				t.Fatalf("names = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("names = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestRoles_UnmarshalJSONRejectsScalars(t *testing.T) {
	var id Identity
	if err := json.Unmarshal([]byte(`{"roles":"admin"}`), &id); err == nil {
		t.Fatal("expected error for scalar roles")
	}
}

func TestIdentity_DropsPassword(t *testing.T) {
	var id Identity
	body := `{"id":7,"nome":"Ana","usuario":"ana@livraria.com","senha":"secret","token":"Bearer t","roles":[]}`
	if err := json.Unmarshal([]byte(body), &id); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var generic map[string]any
	if err := json.Unmarshal(out, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	if _, ok := generic["senha"]; ok {
		t.Fatalf("password leaked into identity: %s", out)
	}
}

func TestSnapshotOf_DerivesFlags(t *testing.T) {
	snap := SnapshotOf(Identity{ID: 1, Token: "t", Roles: Roles{{Nome: "Administrador"}}})
	if !snap.IsAdmin || !snap.IsAuthenticated {
		t.Fatalf("unexpected flags: %+v", snap)
	}
	anon := SnapshotOf(Anonymous())
	if anon.IsAdmin || anon.IsAuthenticated {
		t.Fatalf("anonymous snapshot has flags set: %+v", anon)
	}
	if !Anonymous().IsAnonymous() {
		t.Fatal("Anonymous() should report IsAnonymous")
	}
}
