// Package fluentdforward provides output to fluentd or fluent-bit by the Forward protocol
//
// Each batch is sent as one Forward message with the batch ID as chunk option, and waits for its ACK before the next
// batch is sent.
package fluentdforward
