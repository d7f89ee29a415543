/*
Package textpipe allows to build and execute streaming text pipelines.

Concept

Pipeline is a chain of independently scheduled components. Every component
is executed in its own goroutine, reads a byte stream from its upstream
neighbour and writes a transformed stream to its downstream neighbour:

    Producer - the origin of the stream;
    Stage - the transformer of the stream;
    Consumer - the destination of the stream;

Neighbours are connected with bounded pipes provided by fitting package. A
writer is blocked while the pipe is full, a reader is blocked while the
pipe is empty. This is the only flow control mechanism.

Connection

Components are connected at construction time. Every sink is created with
its source and calls Source.Feed, which allocates a new pipe and passes its
reader end to the sink:

    src := mem.NewSource("hello world!\n")
    replacer, err := transform.NewReplacer(src, "world", "mum")
    sink, err := mem.NewSink(replacer)

Ordinary stage feeds a single sink. Tee feeds exactly two sinks and copies
every byte to both of them.

Execution

Components are started and joined with Run:

    err := textpipe.Run(src, replacer, sink)

Run returns an error only if some component is not connected. Faults which
happen while the stream is processed are handled by the components: a
failed stage closes its output, so downstream observes the end of stream,
and then closes its input, so upstream writer is never stuck on a full
pipe. Downstream can't distinguish such end of stream from a clean one.

Lines

Line stages split the stream into lines terminated by LF, CRLF or the end
of stream, transform the text of each line and write it back followed by
the original terminator.
*/
package textpipe
