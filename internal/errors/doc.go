// Package errors provides coded, explainable errors for Tessera's edges:
// configuration loading, the websocket session and the command line.
//
// Library packages keep plain sentinel errors ("component: container full").
// Code that reports to a person wraps them here so that the message carries
// a stable code, a category and, where one exists, a hint.
//
// # Error Codes
//
//	T001-T009  component tree
//	T010-T019  window
//	T020-T039  protocol
//	T040-T059  session
//	T060-T079  configuration
//	T080-T099  resources
//	T100-T119  command line
//
// # Usage
//
//	err := errors.New("T062").
//	    WithField("server.addr").
//	    Wrap(parseErr)
//
//	errors.PrintError(os.Stderr, err)
//	// ERROR T062: Invalid listen address
//	//
//	//   server.addr
//	//
//	//   Cause: missing port in address
//	//
//	//   Hint: Use host:port, for example ":8080".
package errors
