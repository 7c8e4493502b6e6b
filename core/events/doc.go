// Package events defines the typed events emitted while a call is handled.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - call_state.*
//   - user_input.*
//   - assistant_response.*
//   - assistant_playback.*
//   - turn_state.*
//
// call_state events
//
//   - CallStarted (call_state.started): the telephony side started the
//     stream; carries the stream and call sids.
//   - CallEnded (call_state.ended): the call closed; carries every turn of
//     the conversation.
//
// user_input events
//
//   - UserSpeechStarted (user_input.speech_started): speech activity began.
//   - UserSpeechEnded (user_input.speech_ended): speech activity ended.
//   - UserTranscriptInterimUpdated (user_input.transcript_interim_updated):
//     mutable interim transcript, suitable for live captions only.
//   - UserTranscriptFinal (user_input.transcript_final): finalized utterance
//     that will be answered.
//
// assistant_response events
//
//   - AssistantResponseFinal (assistant_response.final): the reply text that
//     will be spoken, possibly the fallback reply.
//
// assistant_playback events
//
//   - AssistantPlaybackSent (assistant_playback.sent): all frames of a reply
//     and its mark were written to the caller.
//   - AssistantPlaybackMarkPlayed (assistant_playback.mark_played): the
//     telephony side confirmed a mark was played.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a reply cycle started.
//   - TurnCompleted (turn_state.completed): a reply cycle completed.
//   - TurnFailed (turn_state.failed): a reply cycle failed at a stage.
//   - TurnCancelled (turn_state.cancelled): a queued utterance was dropped
//     because the call closed.
package events
