package main

import (
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/ivlev/quizreel/internal/engine"
)

// watchPauseSignal toggles pause on every SIGUSR1 until the returned stop
// function is called.
func watchPauseSignal(pause *engine.PauseControl, pauseSeconds float64) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGUSR1)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ch:
				if pause.Toggle() {
					fmt.Printf("[*] SIGUSR1: пауза %.0fs перед каждым следующим вопросом\n", pauseSeconds)
				} else {
					fmt.Println("[*] SIGUSR1: пауза снята")
				}
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
