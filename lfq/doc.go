// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfq provides a bounded, lock-free single-producer
// single-consumer (SPSC) FIFO queue.
//
// # Quick Start
//
//	q := lfq.NewSPSC[Event](1024)
//
//	// Enqueue (non-blocking, producer goroutine only)
//	ev := Event{}
//	if err := q.Enqueue(&ev); err != nil {
//	    // queue is full - handle backpressure
//	}
//
//	// Dequeue (non-blocking, consumer goroutine only)
//	ev, err := q.Dequeue()
//	if lfq.IsWouldBlock(err) {
//	    // queue is empty - try again later
//	}
//
// # Pipeline Stage
//
//	// Stage 1 → Queue → Stage 2
//	q := lfq.NewSPSC[Data](1024)
//
//	go func() { // Producer (Stage 1)
//	    backoff := iox.Backoff{}
//	    for data := range input {
//	        for q.Enqueue(&data) != nil {
//	            backoff.Wait()
//	        }
//	        backoff.Reset()
//	    }
//	}()
//
//	go func() { // Consumer (Stage 2)
//	    backoff := iox.Backoff{}
//	    for {
//	        data, err := q.Dequeue()
//	        if err != nil {
//	            backoff.Wait()
//	            continue
//	        }
//	        backoff.Reset()
//	        process(data)
//	    }
//	}()
//
// # Error Handling
//
// Enqueue/Dequeue return [ErrWouldBlock] when they cannot proceed (queue
// full or empty respectively). This error is sourced from
// [code.hybscloud.com/iox] for ecosystem consistency — it is a control flow
// signal, not a failure.
//
//	lfq.IsWouldBlock(err)  // true if queue full/empty
//	lfq.IsSemantic(err)    // true if control flow signal
//	lfq.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// # Capacity
//
// Capacity rounds up to the next power of 2:
//
//	q := lfq.NewSPSC[int](3)     // Actual capacity: 4
//	q := lfq.NewSPSC[int](1000)  // Actual capacity: 1024
//
// Minimum capacity is 2. Panics if capacity < 2.
//
// Length is intentionally not provided because accurate counts in lock-free
// algorithms require expensive cross-core synchronization. Track counts in
// application logic when needed.
//
// # Thread Safety
//
// Exactly one producer goroutine and one consumer goroutine at a time.
// Violating that (e.g., two goroutines calling Enqueue concurrently) causes
// undefined behavior, including data corruption.
//
// # Algorithm
//
// Lamport's ring buffer with cached index optimization: the producer caches
// its last observed consumer index, and vice versa, so the common case of
// Enqueue/Dequeue on a queue that isn't near-full/near-empty never has to
// load the other side's atomic index at all, reducing cross-core cache line
// traffic.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm verification.
// It tracks explicit synchronization primitives (mutex, channels, WaitGroup)
// but cannot observe happens-before relationships established purely
// through atomic acquire-release memory ordering. SPSC is correct, but a
// race-instrumented concurrent stress test can still report false
// positives; such tests skip themselves when RaceEnabled is true (set by
// the race / !race build tags in race.go / race_off.go).
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering.
//
// # Use in the graph host
//
// code.hybscloud.com/graphcore's control/audio split maps directly onto
// SPSC: the control thread is always the producer, the audio callback is
// always the consumer, and every cross-thread hand-off — a freshly compiled
// render sequence, most concretely — is a single-producer single-consumer
// stream with a hard no-block constraint on the audio side:
//
//	updates := lfq.NewSPSC[seqHandle](4)
//
//	// control thread, after COMMIT_UPDATES triggers a rebuild
//	_ = updates.Enqueue(&handle)
//
//	// audio thread, at the top of Process, before touching any sample
//	for {
//	    h, err := updates.Dequeue()
//	    if err != nil {
//	        break
//	    }
//	    adopt(h)
//	}
//
// graphhost's render-sequence handoff additionally relies on the queue
// never blocking the producer: a control thread that publishes faster than
// the audio thread drains just leaves its own backlog queued (capped by the
// queue's capacity), and a full queue simply means the previous rebuild
// hasn't been adopted yet, not an error — see graphhost.rebuildAndPublish.
package lfq
