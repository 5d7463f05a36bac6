/*
Package bt contains the runtime form of a behavior tree: the Node interface,
the built-in composite, decorator and leaf nodes, and the Tree handle that
the builder returns.

Nodes are evaluated by ticking. A tick walks down from the root and every
node answers with a Status:

  - Success and Failure are final for the current run of the node.
  - Running means the node needs more ticks; composites remember the
    running child and resume from it on the next tick.

When the root finishes (anything but Running) the Tree resets every node,
so the next tick starts a fresh run. Ticking is synchronous and driven by
the caller; a Tree serializes its own ticks. The only concurrency inside a
tick comes from a parallel node configured as concurrent, which is why the
shared Blackboard is thread-safe.
*/
package bt
