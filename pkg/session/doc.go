/*
Package session implements the Session Store of the bot.

It owns one Session per customer identifier on top of a pluggable ports.SessionStore,
and serializes every operation on the same identifier with a reference-counted local
mutex, plus an optional distributed lock for deployments with several replicas.
Events for different customers never contend.
*/
package session
