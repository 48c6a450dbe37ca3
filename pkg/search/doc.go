// Package search recovers an unknown TOTP secret by exhaustive search.
//
// Given a code observed at a known instant, a Searcher tests candidate
// 20 byte secrets until one reproduces the code. Candidates are ordered as
// little-endian integers and the space is cut into partitions:
//
//	start(thread, attempt) = (attempt*threads + thread) * iterations
//
// Thread t of attempt a tests (start, start+iterations]. For a fixed thread
// count and iteration budget the partitions of one attempt are disjoint and
// the partitions of attempt a+1 continue exactly where attempt a stopped, so
// a caller with a limited time budget per call can resume a search by
// incrementing the attempt number. Nothing is persisted between calls.
//
// # Example
//
//	s, err := search.NewSearcher(search.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for attempt := uint64(0); ; attempt++ {
//	    res, err := s.Find(ctx, search.Request{
//	        TargetTime:  1700000000,
//	        TargetToken: "123456",
//	        Threads:     runtime.NumCPU(),
//	        Attempt:     attempt,
//	        Iterations:  100000,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if res.Found {
//	        fmt.Println(res.Secret.Base32())
//	        break
//	    }
//	}
//
// A six digit code is reproduced by roughly one secret in a million, so the
// recovered secret is one that matches at the target instant, not
// necessarily the original. Confirm it against a second observed code before
// relying on it.
//
// # Determinism
//
// Every worker runs its full budget, and when several workers match the one
// with the lowest thread id is returned. Identical requests therefore return
// identical results regardless of scheduling.
//
// # Overflow
//
// Partition starts are computed with arbitrary precision; a start that does
// not fit in 160 bits fails with ErrRangeOverflow. Secret.Increment wraps
// from all-0xFF to all-zero without signalling.
package search
