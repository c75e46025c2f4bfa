package capture

import "bytes"

// DetectAudioFormat sniffs the container format of an audio clip from
// its magic bytes. Unknown data defaults to webm, the usual recorder
// output.
func DetectAudioFormat(data []byte) string {
	if len(data) >= 12 {
		switch {
		case bytes.HasPrefix(data, []byte{0x1a, 0x45, 0xdf, 0xa3}):
			return "webm"
		case bytes.HasPrefix(data, []byte("OggS")):
			return "ogg"
		case bytes.HasPrefix(data, []byte("fLaC")):
			return "flac"
		case bytes.HasPrefix(data, []byte("ID3")), bytes.HasPrefix(data, []byte{0xff, 0xfb}):
			return "mp3"
		case bytes.Equal(data[4:8], []byte("ftyp")):
			return "mp4"
		case bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
			return "wav"
		}
	}
	return "webm"
}
