// Command callsim plays a recording into the helpline media stream the way
// Twilio would during a phone call and saves the spoken replies.
//
// The input and output files hold raw 8kHz mu-law audio without a header.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-helpline/core/audio"
	"github.com/koscakluka/ema-helpline/core/telephony"
)

func main() {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	url := flag.String("url", "ws://localhost:8080/audio_stream", "media stream endpoint")
	input := flag.String("in", "", "raw mu-law recording of the caller")
	output := flag.String("out", "reply.ulaw", "file the replies are written to")
	linger := flag.Duration("linger", 15*time.Second, "how long to keep listening after the recording ends")
	flag.Parse()

	if *input == "" {
		log.Fatal("missing -in recording")
	}
	if err := run(*url, *input, *output, *linger); err != nil {
		log.Fatal(err)
	}
}

func run(url, input, output string, linger time.Duration) error {
	recording, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("failed to read recording: %w", err)
	}
	replies, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer replies.Close()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	streamSID := "MZ" + uuid.NewString()
	var writeMu sync.Mutex
	send := func(msg any) error {
		payload, err := telephony.Encode(msg)
		if err != nil {
			return err
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, payload)
	}

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		receive(conn, streamSID, replies, send)
	}()

	if err := send(telephony.NewConnectedMessage()); err != nil {
		return err
	}
	if err := send(telephony.NewStartMessage(streamSID, "CA"+uuid.NewString())); err != nil {
		return err
	}
	log.Printf("stream %s started", streamSID)

	ticker := time.NewTicker(audio.FrameDuration)
	defer ticker.Stop()
	for i, frame := range audio.Chunk(recording, audio.TelephonyFrameSize) {
		<-ticker.C
		timestamp := int64(i) * audio.FrameDuration.Milliseconds()
		if err := send(telephony.NewInboundMediaMessage(streamSID, i+1, timestamp, frame)); err != nil {
			return fmt.Errorf("failed to send audio: %w", err)
		}
	}
	log.Printf("recording sent (%s), listening for %s", audio.GetTelephonyEncodingInfo().Duration(len(recording)), linger)

	select {
	case <-readDone:
		return nil
	case <-time.After(linger):
	}

	if err := send(telephony.NewStopMessage(streamSID)); err != nil {
		return fmt.Errorf("failed to send stop: %w", err)
	}
	<-readDone
	return nil
}

// receive saves reply audio and echoes marks back once their audio has
// "played", as Twilio does.
func receive(conn *websocket.Conn, streamSID string, replies *os.File, send func(any) error) {
	var played time.Duration
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("stream closed: %v", err)
			}
			return
		}

		frame, err := telephony.Decode(msg)
		if err != nil {
			log.Printf("skipping message: %v", err)
			continue
		}

		switch frame := frame.(type) {
		case telephony.MediaFrame:
			if _, err := replies.Write(frame.Audio); err != nil {
				log.Printf("failed to save reply audio: %v", err)
			}
			played += audio.GetTelephonyEncodingInfo().Duration(len(frame.Audio))
		case telephony.MarkFrame:
			log.Printf("mark %q received after %s of reply audio", frame.Name, played)
			if err := send(telephony.NewMarkMessage(streamSID, frame.Name)); err != nil {
				log.Printf("failed to echo mark: %v", err)
			}
		}
	}
}
