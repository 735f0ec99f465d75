package audio

import (
	"bytes"
	"encoding/binary"
)


// wavHeaderSize is the length of the canonical 44-byte header NewWavBuffer
// writes (RIFF/WAVE + "fmt " chunk + "data" chunk header, no extra chunks).
const wavHeaderSize = 44

// IsWavBuffer reports whether data begins with the RIFF/WAVE signature
// NewWavBuffer writes, used by the edge client to tell a one-shot
// complete-buffer synthesis frame (spec §4.7) apart from a raw-PCM
// streaming frame.
func IsWavBuffer(data []byte) bool {
	return len(data) >= wavHeaderSize && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// DecodePCMFromWav strips the canonical header a RIFF/WAVE buffer built by
// NewWavBuffer carries and returns the raw PCM payload underneath, ready for
// the same playback path a streaming frame takes.
func DecodePCMFromWav(data []byte) []byte {
	if len(data) <= wavHeaderSize {
		return nil
	}
	return data[wavHeaderSize:]
}

func NewWavBuffer(pcm []byte, sampleRate int) []byte {
	buf := new(bytes.Buffer)

	
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))           
	binary.Write(buf, binary.LittleEndian, uint16(1))            
	binary.Write(buf, binary.LittleEndian, uint16(1))            
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))   
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2)) 
	binary.Write(buf, binary.LittleEndian, uint16(2))            
	binary.Write(buf, binary.LittleEndian, uint16(16))           

	
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
