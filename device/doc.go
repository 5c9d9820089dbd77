// Package device provides the execution model the kernels in this module
// are written against: a grid of independently scheduled thread blocks,
// block-local shared memory, full-block barriers, global buffers, in-order
// streams and an atomic float cell.
//
// There is no vendor runtime behind it. Blocks are distributed over a
// persistent pool of host goroutines, and the threads of one block run in
// phases: a call to [Block.Threads] executes the body once per thread and
// returns only when every thread of the block finished it, which makes each
// return a block-wide barrier that all threads reach unconditionally.
//
// # Usage
//
//	ctx := device.NewContext()
//	defer ctx.Close()
//
//	s, _ := ctx.NewStream()
//	defer s.Close()
//
//	buf, _ := device.NewBuffer[float32](1024)
//	_ = buf.Upload(host)
//	_ = s.Launch(cfg, kernel)
//	_ = s.Synchronize()
//	_ = buf.Download(host)
//
// Launches are asynchronous with respect to the caller: [Stream.Launch]
// returns once the command is queued. Commands on a single stream retire in
// submission order; callers order dependent stages by submitting them to
// the same stream, or by synchronizing.
package device
