// Package events defines the typed response event contract emitted by a
// streaming session client and consumed by the bridge.
//
// Event kinds are grouped by namespace:
//
//   - turn.*
//   - session.*
//
// turn events
//
//   - TurnStarted (turn.started): the session opened a new assistant turn.
//     The start may also be implicit; a delta for an unknown turn opens one.
//   - TurnTextDelta (turn.text_delta): append-only transcript fragment for
//     the open turn, emitted in stream order.
//   - TurnAudioDelta (turn.audio_delta): raw PCM fragment for the open turn,
//     emitted in stream order.
//   - TurnCompleted (turn.completed): terminal boundary for the open turn,
//     carrying the final transcript known to the session.
//
// session events
//
//   - SessionError (session.error): a non-fatal session-level failure. The
//     bridge logs it and stays in its current state.
package events
