// Package markprompt renders LLM prompts from semantic tags.
//
// A prompt is a tree of Nodes. Trees come from typed constructors or from
// template documents, and are rendered in two steps: Serialize writes flat
// markup and Format pretty-prints it.
//
//	node := markprompt.Prompt(
//	    markprompt.Purpose(markprompt.Text("Summarize the report.")),
//	    markprompt.Instructions([]string{"Keep <code> blocks intact"}),
//	)
//	out, err := markprompt.RenderNode(node)
//	// <purpose>Summarize the report.</purpose>
//	// <instructions>
//	//   <instruction>Keep <code> blocks intact</instruction>
//	// </instructions>
//
// # Escaping
//
// Text leaves are escaped on serialization. Trusted content, such as the
// strings given to Instructions, Examples and ChatHistory, is written
// byte-for-byte and passes through formatting untouched, so code and
// pseudo-markup reach the model exactly as written.
//
// # Templates
//
// Template documents mix literal text with {~ ~} tags. Component tags are
// resolved against the registry; built-in tags live under the reserved
// mp. prefix:
//
//	---
//	title: Review
//	data:
//	  tone: friendly
//	---
//	{~purpose~}Review the code in a {~mp.var name="data.tone" /~} tone.{~/purpose~}
//	{~instructions instructions={data.rules} /~}
//	{~mp.if eval="defined(data.history)"~}
//	{~chat-history messages={data.history} /~}
//	{~/mp.if~}
//
// Built-ins: mp.var, mp.raw, mp.comment, mp.if / mp.elseif / mp.else,
// mp.for and mp.include.
//
//	out, err := markprompt.RenderFile(ctx, markprompt.RenderOptions{
//	    FilePath: "review.mdp",
//	    Data:     map[string]any{"rules": []string{"Be brief"}},
//	})
//
// # Components
//
// A Component maps Props to a Node. Per-call overrides replace defaults by
// tag name and never modify the shared registry:
//
//	out, err := engine.RenderFile(ctx, markprompt.RenderOptions{
//	    FilePath: "review.mdp",
//	    Components: markprompt.Components{
//	        "purpose": func(p markprompt.Props) (*markprompt.Node, error) {
//	            return markprompt.Element("goal", nil, p.Children...), nil
//	        },
//	    },
//	})
//
// # Errors
//
// Errors are *cuserr.CustomError values. IsCompileError, IsFormatError,
// IsPropsShapeError and IsSerializeError classify them; compile errors
// carry line and column metadata.
package markprompt
