// Package whatsapp implements the session transport over the whatsmeow
// WhatsApp multi-device client.
package whatsapp
