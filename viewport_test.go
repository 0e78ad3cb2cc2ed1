package deck

import "testing"

func TestViewportEqual(t *testing.T) {
	base := &Viewport{ID: "main", Width: 800, Height: 600, Zoom: 2}

	tests := []struct {
		name string
		a, b *Viewport
		want bool
	}{
		{"identical", base, &Viewport{ID: "main", Width: 800, Height: 600, Zoom: 2}, true},
		{"same pointer", base, base, true},
		{"different zoom", base, &Viewport{ID: "main", Width: 800, Height: 600, Zoom: 3}, false},
		{"different id", base, &Viewport{ID: "mini", Width: 800, Height: 600, Zoom: 2}, false},
		{"different size", base, &Viewport{ID: "main", Width: 400, Height: 600, Zoom: 2}, false},
		{"nil other", base, nil, false},
		{"both nil", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
