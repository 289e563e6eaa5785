// devicesim generates synthetic wearable uploads against a running
// ingest service: random identities, random 68-byte device records,
// zstd-compressed and posted as real upload requests.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/klauspost/compress/zstd"
)

const recordSize = 68

type uploadRequest struct {
	UserID         string `json:"user_id"`
	DeviceID       string `json:"device_id"`
	SessionID      string `json:"session_id"`
	SamplingRateHz int    `json:"sampling_rate_hz"`
	PayloadZstd    string `json:"payload_zstd"`
}

func main() {
	url := flag.String("url", "http://localhost:8077/api/v1/eeg", "ingest endpoint")
	uploads := flag.Int("uploads", 10, "number of upload blocks to send")
	records := flag.Int("records", 250, "device records per block")
	rate := flag.Int("rate", 250, "sampling rate in Hz")
	interval := flag.Duration("interval", time.Second, "delay between uploads")
	seed := flag.Int64("seed", 0, "random seed (0 uses current time)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	gofakeit.Seed(*seed)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		log.Fatalf("init zstd encoder: %v", err)
	}
	defer enc.Close()

	userID := gofakeit.UUID()
	deviceID := fmt.Sprintf("headset-%s", gofakeit.LetterN(8))
	sessionID := gofakeit.UUID()
	log.Printf("simulating device %s (user %s, session %s, seed %d)", deviceID, userID, sessionID, *seed)

	client := &http.Client{Timeout: 30 * time.Second}
	baseTS := uint32(0)

	for i := 0; i < *uploads; i++ {
		frames := makeFrames(rng, *records, *rate, baseTS)
		baseTS += uint32(*records * 1_000_000 / *rate)

		body, err := json.Marshal(uploadRequest{
			UserID:         userID,
			DeviceID:       deviceID,
			SessionID:      sessionID,
			SamplingRateHz: *rate,
			PayloadZstd:    base64.StdEncoding.EncodeToString(enc.EncodeAll(frames, nil)),
		})
		if err != nil {
			log.Fatalf("marshal request: %v", err)
		}

		resp, err := client.Post(*url, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("post upload %d: %v", i+1, err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		log.Printf("upload %d/%d: %s %s", i+1, *uploads, resp.Status, bytes.TrimSpace(respBody))

		if i+1 < *uploads {
			time.Sleep(*interval)
		}
	}
}

// makeFrames builds records carrying a noisy sine per channel, which
// compresses like plausible resting-state EEG rather than flat zeros.
func makeFrames(rng *rand.Rand, records, rateHz int, baseTS uint32) []byte {
	buf := make([]byte, records*recordSize)
	stepUS := uint32(1_000_000 / rateHz)

	for i := 0; i < records; i++ {
		rec := buf[i*recordSize:]
		phase := float64(i) / float64(rateHz)
		for ch := 0; ch < 8; ch++ {
			wave := math.Sin(2*math.Pi*10*phase + float64(ch))
			value := 32768 + int(wave*8000) + rng.Intn(512) - 256
			binary.LittleEndian.PutUint16(rec[ch*2:], uint16(value))
		}
		// IMU slots stay zero; the service skips them anyway.
		binary.LittleEndian.PutUint32(rec[64:], baseTS+uint32(i)*stepUS)
	}
	return buf
}
