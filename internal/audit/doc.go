// Package audit records the commands remote panels send to the board.
//
// Every accepted command from the HTTP API or the MQTT bridge becomes one
// row in the command_log table of the trace database, so a bench session
// can be replayed as "who changed what, when".
package audit
