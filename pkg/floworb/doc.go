/*
Package floworb executes nodes of a small visual AI workflow graph.

# Overview

A workflow is a directed graph of typed nodes. Data-only nodes (images,
prompt templates, output previews) hold inputs and results. Transform nodes
(image edit/generate, reasoning analysis, video generation) call an external
Generation Service when the user runs them.

Two pieces make up the package:
  - Graph: the authoritative node and connection store
  - Engine: runs one node, writing the outcome back into the Graph

# Basic Usage

	g := floworb.NewGraph()
	src, _ := g.CreateNode(floworb.NodeSpec{
	    Kind: floworb.KindImageInput,
	    Data: &floworb.ImageInputData{ImageData: "data:image/png;base64,..."},
	})
	edit, _ := g.CreateNode(floworb.NodeSpec{
	    Kind: floworb.KindImageEditOrGenerate,
	    Data: &floworb.ImageEditData{Prompt: "make it blue"},
	})
	out, _ := g.CreateNode(floworb.NodeSpec{Kind: floworb.KindOutputSink})
	g.Connect(src.ID, edit.ID)
	g.Connect(edit.ID, out.ID)

	engine := floworb.NewEngine(g, service, floworb.WithTimeout(2*time.Minute))
	result, err := engine.Run(ctx, edit.ID)

# Input Gathering

Before calling the service, the Engine gathers inputs from the target's
own prompt and its direct upstream nodes, visiting incoming connections in
creation order:
  - ImageInput contributes its image data as an image
  - ImageEditOrGenerate contributes its output image as an image
  - ReasoningAnalysis contributes its analysis result as a prompt, or
    blocks the run if it has not produced one yet
  - PromptTemplate contributes its prompt

# Propagation

A successful image or video run writes its artifact into every directly
downstream node. Downstream transform nodes are not run automatically;
they pick up new inputs the next time they are run.

# Errors

Runs never panic and never leave a node in StatusProcessing. Validation
problems (ErrMissingInputs, ErrUpstreamNotReady), service failures
(*generation.Error) and timeouts (ErrTimeout) are written into the node's
error message and returned wrapped in a *NodeError. Use Categorize to map
any error to a reporting Category.

# Concurrency

Graph is safe for concurrent use. The Engine allows concurrent runs on
different nodes and rejects a second run on a node that is already
running with ErrAlreadyRunning.
*/
package floworb
