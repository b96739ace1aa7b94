package story

import "fmt"

// NumMemes 每个故事固定拆解为九个叙事节点，少于或多于都判定为分析失败
const NumMemes = 9

// systemPrompt 指示模型扮演表情包创作助手
const systemPrompt = `You are a creative meme generator assistant. Your task is to analyze stories
and convert them into engaging visual memes. Each meme should include a short
caption (15-20 words maximum) that helps tell the story in a funny and
insightful way. The sequence of memes should capture the overall narrative
arc of the story.

Guidelines for creating good meme prompts:
1. Each prompt should be specific and detailed about the visual scene
2. Include style specification (e.g., 'pixar style', 'photorealistic')
3. Mention any text that should appear on the meme
4. Make sure the sequence flows well and tells a coherent story`

// analysisPromptTemplate 要求模型把故事拆成九个叙事节点并返回 JSON
const analysisPromptTemplate = `Please analyze the following story and break it down into %d key narrative points
that would make good meme images. For each point:
1. Identify the key moment, character interaction, or plot development
2. Suggest a visual scene that captures this moment
3. Create a short, funny caption (15-20 words maximum) that is moving and insightful
4. Include style specification (e.g., 'pixar style', 'photorealistic')
5. Mention any text that should appear on the meme
6. Make sure the sequence flows well and tells a coherent story

Story:
%s

Respond with a JSON object of the form {"memes": [...]} where "memes" is an array
of exactly %d entries. Each entry must have a "visual" field with a detailed visual
description and a "caption" field with the text to appear on the meme.
Format each entry to work well with the OpenAI image generation API.`

// memePromptTemplate 把叙事节点渲染为最终的图像生成提示词
const memePromptTemplate = `Create a meme image with the following scene: %s

The image should include the following text caption:
"%s"

Style: Cartoon meme style, vibrant colors, modern, humorous`

// BuildMemePrompt 把一个叙事节点渲染为图像生成提示词
// 同一节点总是产出相同的提示词，保证按位置映射是确定性的
func BuildMemePrompt(p NarrativePoint) string {
	return fmt.Sprintf(memePromptTemplate, p.Visual, p.Caption)
}

func buildAnalysisPrompt(storyText string) string {
	return fmt.Sprintf(analysisPromptTemplate, NumMemes, storyText, NumMemes)
}
