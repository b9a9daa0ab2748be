package audio

import (
	"bytes"
	"encoding/binary"
)

const silenceThreshold = int16(500)

// segmenter accumulates microphone frames into one utterance: leading silence
// is dropped and the utterance ends after a second of trailing silence or
// thirty seconds of audio.
type segmenter struct {
	sampleRate int
	samples    []int16
	silent     int
	heard      bool
}

func newSegmenter(sampleRate int) *segmenter {
	return &segmenter{
		sampleRate: sampleRate,
		samples:    make([]int16, 0, sampleRate*5),
	}
}

// feed consumes one frame and reports whether the utterance is complete.
func (s *segmenter) feed(frame []int16) bool {
	quiet := isSilent(frame)
	if !s.heard {
		if quiet {
			return false
		}
		s.heard = true
	}

	s.samples = append(s.samples, frame...)

	if quiet {
		s.silent += len(frame)
	} else {
		s.silent = 0
	}

	if s.silent > s.sampleRate {
		s.samples = s.samples[:len(s.samples)-s.silent]
		return true
	}
	return len(s.samples) >= s.sampleRate*30
}

func isSilent(frame []int16) bool {
	for _, sample := range frame {
		if sample > silenceThreshold || sample < -silenceThreshold {
			return false
		}
	}
	return true
}

// samplesToWav encodes 16-bit mono PCM as a RIFF/WAVE file.
func samplesToWav(samples []int16, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer

	dataSize := len(samples) * 2
	fileSize := 36 + dataSize

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, int32(fileSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, int32(16))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int16(1))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, int32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, int16(2))
	binary.Write(&buf, binary.LittleEndian, int16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, int32(dataSize))
	if err := binary.Write(&buf, binary.LittleEndian, samples); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
