// Package bench runs a tree of nested test groups and cases, executing every case in its own
// child process. It is similar in spirit to Go's testing package, but it is driven by regular
// application code: a program declares its groups and cases inside bench.Run, and the same
// program is re-executed once per case to run that case in isolation.
//
// A case can end in four ways: it returns normally, it calls T.Pass, it fails through T.Failf
// (or any assertion built on T.Errorf and T.FailNow), or its process dies. Only an exit status
// of zero from the child process counts as a pass.
package bench
