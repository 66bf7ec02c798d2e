package compression

import (
	"fmt"
	"strings"
)

// VideoInfo captures the media-inspector facts the policy engine needs.
type VideoInfo struct {
	Width            int
	Height           int
	FPS              float64
	Codec            string
	BitrateKbps      int
	AudioBitrateKbps int
	AudioChannels    int
	DurationSeconds  float64
}

// Strategy describes how (and whether) a source should be re-encoded. When
// ShouldCompress is false the caller copies the source bytes verbatim.
type Strategy struct {
	ShouldCompress bool
	CRF            int
	Preset         string
	AudioBitrate   string
	TwoPass        bool
	MaxrateKbps    int
	BufsizeKbps    int
	Reason         string
}

// Size tier boundaries in MB.
const (
	tierSmall  = 100
	tierMedium = 400
	tierLarge  = 800
	tierXLarge = 1500
	tierHuge   = 2500
)

// audioCopyFloorKbps is the source audio bitrate below which re-encoding audio
// would only lose quality; the strategy forces stream copy instead.
const audioCopyFloorKbps = 96

// efficientThreshold is the current-efficiency ratio below which an
// already-modern encode is left alone.
const efficientThreshold = 1.2

var modernCodecs = map[string]struct{}{
	"hevc": {},
	"av1":  {},
}

// OptimalBitrateKbps returns the target bitrate baseline for a resolution
// tier, scaled up for frame rates above 30fps.
func OptimalBitrateKbps(info VideoInfo) int {
	var base float64
	switch {
	case info.Height >= 2160:
		base = 35000
	case info.Height >= 1080:
		base = 8000
	case info.Height >= 720:
		base = 5000
	default:
		base = 2500
	}
	if info.FPS > 30 {
		base *= info.FPS / 30
	}
	return int(base)
}

// Decide applies the size-tiered decision table plus the audio-floor and
// already-efficient overrides. Pure function: identical inputs always yield
// an identical strategy.
func Decide(sizeMB float64, info VideoInfo) Strategy {
	optimal := OptimalBitrateKbps(info)
	efficiency := 0.0
	if optimal > 0 {
		efficiency = float64(info.BitrateKbps) / float64(optimal)
	}

	strategy := tierStrategy(sizeMB, optimal)

	if strategy.ShouldCompress && info.AudioBitrateKbps > 0 && info.AudioBitrateKbps < audioCopyFloorKbps {
		strategy.AudioBitrate = "copy"
	}

	if strategy.ShouldCompress && isModernCodec(info.Codec) && efficiency < efficientThreshold {
		return Strategy{
			ShouldCompress: false,
			Reason: fmt.Sprintf("already efficient: %s at %.2fx optimal bitrate", strings.ToLower(info.Codec), efficiency),
		}
	}

	return strategy
}

func isModernCodec(codec string) bool {
	_, ok := modernCodecs[strings.ToLower(strings.TrimSpace(codec))]
	return ok
}

func tierStrategy(sizeMB float64, optimalKbps int) Strategy {
	switch {
	case sizeMB < tierSmall:
		return Strategy{
			ShouldCompress: false,
			Reason:         "under 100MB: not worth re-encoding",
		}
	case sizeMB < tierMedium:
		return Strategy{
			ShouldCompress: true,
			CRF:            23,
			Preset:         "slow",
			AudioBitrate:   "128k",
			Reason:         "100-400MB: standard quality encode",
		}
	case sizeMB < tierLarge:
		return Strategy{
			ShouldCompress: true,
			CRF:            23,
			Preset:         "slow",
			AudioBitrate:   "128k",
			MaxrateKbps:    optimalKbps * 3 / 2,
			BufsizeKbps:    optimalKbps * 3,
			Reason:         "400-800MB: standard encode with rate cap",
		}
	case sizeMB < tierXLarge:
		return Strategy{
			ShouldCompress: true,
			CRF:            24,
			Preset:         "medium",
			AudioBitrate:   "112k",
			MaxrateKbps:    optimalKbps * 7 / 5,
			BufsizeKbps:    optimalKbps * 14 / 5,
			Reason:         "800-1500MB: faster preset, tighter cap",
		}
	case sizeMB < tierHuge:
		return Strategy{
			ShouldCompress: true,
			CRF:            24,
			Preset:         "medium",
			AudioBitrate:   "96k",
			TwoPass:        true,
			MaxrateKbps:    optimalKbps * 13 / 10,
			BufsizeKbps:    optimalKbps * 13 / 5,
			Reason:         "1500-2500MB: two-pass for predictable size",
		}
	default:
		return Strategy{
			ShouldCompress: true,
			CRF:            23,
			Preset:         "slow",
			AudioBitrate:   "96k",
			TwoPass:        true,
			MaxrateKbps:    optimalKbps * 6 / 5,
			BufsizeKbps:    optimalKbps * 12 / 5,
			Reason:         "over 2500MB: two-pass, aggressive cap",
		}
	}
}
