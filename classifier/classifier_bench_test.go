package classifier

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func BenchmarkClassify(b *testing.B) {
	c, err := New(DefaultConfig())
	require.NoError(b, err)

	for _, size := range [][2]int{{90, 90}, {120, 320}, {240, 640}} {
		b.Run(fmt.Sprintf("%dx%d", size[0], size[1]), func(b *testing.B) {
			width, height := size[0], size[1]
			data := make([]byte, width*height*3)
			for i := 2; i < width*(height/3)*3; i += 3 {
				data[i] = 255
			}
			view, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
			require.NoError(b, err)
			crop := view.Clone()
			view.Close()
			defer crop.Close()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = c.Classify(crop)
			}
		})
	}
}

func BenchmarkDecide(b *testing.B) {
	img := solidHSV(120, 320, 60, 255, 255)
	cfg := DefaultConfig()
	masks := GenerateMasks(img, cfg.Thresholds)
	bands := Partition(img.Height)
	counts := CountBands(masks, bands)
	ev := Evidence{
		Counts:     counts,
		Scores:     Score(counts, cfg.Weights),
		Pixels:     masks.Totals(),
		Brightness: BandBrightness(img, bands),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Decide(ev, &cfg)
	}
}
