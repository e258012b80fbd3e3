package main

import "testing"

func TestPgxURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/ims?sslmode=disable": "pgx5://u:p@db:5432/ims?sslmode=disable",
		"postgresql://db/ims":                        "pgx5://db/ims",
		"pgx5://db/ims":                              "pgx5://db/ims",
	}
	for in, want := range tests {
		if got := pgxURL(in); got != want {
			t.Errorf("pgxURL(%q) = %q, want %q", in, got, want)
		}
	}
}
