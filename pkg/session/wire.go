package session

// Control frame payloads sent over the transport's text channel, grounded on
// the original bridge's JSON control vocabulary (ready/stt/translate/
// tts_start/tts_end/error) and carried forward unchanged by spec §6.
type (
	readyFrame struct {
		Type    string `json:"type"`
		Channel string `json:"channel"`
	}

	sttFrame struct {
		Type string `json:"type"`
		Text string `json:"text"`
		Seq  uint64 `json:"seq"`
	}

	translateFrame struct {
		Type string `json:"type"`
		Text string `json:"text"`
		Seq  uint64 `json:"seq"`
	}

	ttsStartFrame struct {
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
	}

	ttsEndFrame struct {
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
	}

	errorFrame struct {
		Type  string `json:"type"`
		Error string `json:"error"`
		Seq   uint64 `json:"seq,omitempty"`
	}

	// sttCanceledFrame reports the RecognizerFailed policy (spec §7) to the
	// client: the recognizer stream dropped and is being restarted once
	// before the session gives up and terminates.
	sttCanceledFrame struct {
		Type string `json:"type"`
	}
)

func newReadyFrame(channel string) readyFrame {
	return readyFrame{Type: "ready", Channel: channel}
}
func newSTTFrame(text string, seq uint64) sttFrame { return sttFrame{Type: "stt", Text: text, Seq: seq} }
func newTranslateFrame(text string, seq uint64) translateFrame {
	return translateFrame{Type: "translate", Text: text, Seq: seq}
}
func newTTSStartFrame(seq uint64) ttsStartFrame { return ttsStartFrame{Type: "tts_start", Seq: seq} }
func newTTSEndFrame(seq uint64) ttsEndFrame     { return ttsEndFrame{Type: "tts_end", Seq: seq} }
func newErrorFrame(msg string, seq uint64) errorFrame {
	return errorFrame{Type: "error", Error: msg, Seq: seq}
}
func newSTTCanceledFrame() sttCanceledFrame { return sttCanceledFrame{Type: "stt_canceled"} }
