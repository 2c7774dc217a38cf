package vulkan

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/svke/gpu"
)

func TestCanPresent(t *testing.T) {
	format := gpu.SurfaceFormat{Format: gpu.FormatB8G8R8A8SRGB, ColorSpace: gpu.ColorSpaceSRGBNonlinear}

	tests := []struct {
		name    string
		support gpu.SurfaceSupport
		want    bool
	}{
		{
			name: "format and present mode",
			support: gpu.SurfaceSupport{
				Formats:      []gpu.SurfaceFormat{format},
				PresentModes: []gpu.PresentMode{gpu.PresentModeFIFO},
			},
			want: true,
		},
		{
			name:    "no formats",
			support: gpu.SurfaceSupport{PresentModes: []gpu.PresentMode{gpu.PresentModeFIFO}},
		},
		{
			name:    "no present modes",
			support: gpu.SurfaceSupport{Formats: []gpu.SurfaceFormat{format}},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.want, canPresent(test.support))
		})
	}
}
