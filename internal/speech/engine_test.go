package speech

import "testing"

func TestParseEspeakVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  fr-fr           --/M      French_(France)    roa/fr
 5  fr-ca           --/M      French_(Canada)    roa/fr-CA
`
	voices := parseEspeakVoices(out)
	if len(voices) != 3 {
		t.Fatalf("parsed %d voices, want 3", len(voices))
	}
	if voices[1].ID != "fr-fr" || voices[1].Name != "French_(France)" || voices[1].Lang != "fr-fr" {
		t.Fatalf("voice[1] = %#v", voices[1])
	}
}

func TestParseEspeakVoices_Empty(t *testing.T) {
	if voices := parseEspeakVoices(""); len(voices) != 0 {
		t.Fatalf("parsed %d voices from empty output", len(voices))
	}
}

func TestParseSayVoices(t *testing.T) {
	out := `Alex                en_US    # Most people recognize me by my voice.
Amelie              fr_CA    # Bonjour! Je m'appelle Amelie.
Thomas              fr_FR    # Bonjour, je m'appelle Thomas.
`
	voices := parseSayVoices(out)
	if len(voices) != 3 {
		t.Fatalf("parsed %d voices, want 3", len(voices))
	}
	if voices[0].ID != "Alex" || voices[0].Lang != "en-US" {
		t.Fatalf("voice[0] = %#v", voices[0])
	}
	if voices[1].Name != "Amelie" || voices[1].Lang != "fr-CA" {
		t.Fatalf("voice[1] = %#v", voices[1])
	}
}
