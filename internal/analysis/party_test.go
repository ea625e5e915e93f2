package analysis

import "testing"

func strOf(p *string) string {
	if p == nil {
		return "<absent>"
	}
	return *p
}

func TestExtractParty(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		label       string
		wantName    string
		wantAddress string
	}{
		{
			name:        "name and address split on street token",
			text:        "Cliente: Juan Perez Av. Siempre Viva 123, Buenos Aires Proveedor: X Corp",
			label:       "cliente",
			wantName:    "Juan Perez",
			wantAddress: "Av. Siempre Viva 123, Buenos Aires",
		},
		{
			name:        "name only",
			text:        "Cliente: Solo Nombre\nProveedor: Otro",
			label:       "cliente",
			wantName:    "Solo Nombre",
			wantAddress: "<absent>",
		},
		{
			name:        "supplier label",
			text:        "Cliente: Juan\nProveedor: ACME S.A. Calle Falsa 742\nFecha: 01/02/2024",
			label:       "proveedor",
			wantName:    "ACME S.A.",
			wantAddress: "Calle Falsa 742",
		},
		{
			name:        "comma fallback when no street token",
			text:        "Cliente: Empresa Grande, Zona Norte Total: $10",
			label:       "cliente",
			wantName:    "Empresa Grande",
			wantAddress: "Zona Norte",
		},
		{
			name:        "digits start the address",
			text:        "Cliente: Maria Lopez 4550 Oak Street Fecha: 01/01/2024",
			label:       "cliente",
			wantName:    "Maria Lopez",
			wantAddress: "4550 Oak Street",
		},
		{
			name:        "case insensitive label",
			text:        "CLIENTE: Juan Perez proveedor: X",
			label:       "cliente",
			wantName:    "Juan Perez",
			wantAddress: "<absent>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractParty(tt.text, tt.label)
			if got == nil {
				t.Fatalf("ExtractParty(%q, %q) = nil", tt.text, tt.label)
			}
			if strOf(got.Name) != tt.wantName {
				t.Errorf("name = %q, want %q", strOf(got.Name), tt.wantName)
			}
			if strOf(got.Address) != tt.wantAddress {
				t.Errorf("address = %q, want %q", strOf(got.Address), tt.wantAddress)
			}
		})
	}
}

func TestExtractPartyAbsentLabel(t *testing.T) {
	if got := ExtractParty("Proveedor: ACME\nFecha: 01/02/2024", "cliente"); got != nil {
		t.Errorf("ExtractParty = %+v, want nil", got)
	}
}

func TestExtractPartyFirstOccurrenceWins(t *testing.T) {
	got := ExtractParty("Cliente: Primero Fecha: 01/01/2024 Cliente: Segundo", "cliente")
	if got == nil {
		t.Fatal("ExtractParty = nil")
	}
	if strOf(got.Name) != "Primero" {
		t.Errorf("name = %q, want %q", strOf(got.Name), "Primero")
	}
}

// The address split checks cut patterns in a fixed priority order and takes
// the first pattern that matches anywhere in the block. With both "Calle"
// and "Av." present the split lands on "Av." because it ranks higher, even
// though "Calle" appears earlier in the text. Deliberately pinned: stored
// party blocks depend on this exact policy.
func TestExtractPartySplitPriorityOrderNotLeftmost(t *testing.T) {
	got := ExtractParty("Cliente: Calle Mayor Consultores Av. Libertador Fecha: 1/1/2024", "cliente")
	if got == nil {
		t.Fatal("ExtractParty = nil")
	}
	if strOf(got.Name) != "Calle Mayor Consultores" {
		t.Errorf("name = %q, want %q", strOf(got.Name), "Calle Mayor Consultores")
	}
	if strOf(got.Address) != "Av. Libertador" {
		t.Errorf("address = %q, want %q", strOf(got.Address), "Av. Libertador")
	}
}
