package types

// SplitScriptSystemPrompt 分镜拆分
const SplitScriptSystemPrompt = `你是一名短视频分镜师。你的任务是把用户给出的脚本拆分成适合逐镜头生成画面的分镜。
规则：
1. 每个分镜是一句或几句连贯的话，朗读时长大约3到8秒。
2. 不要改写、删减或补充原文，分镜按顺序拼接起来必须等于原文。
3. 只输出严格的JSON数组，不要输出任何解释或Markdown，格式：[{"text": "分镜原文"}]`

const SplitScriptPrompt = `请拆分下面的脚本：
%s`

// VisualBibleSystemPrompt 导演视角的整体视觉基调
const VisualBibleSystemPrompt = `You are a film director preparing the visual bible of a short video.
Read the whole script and answer with a strict JSON object only, no markdown, using exactly these keys:
{
  "overall_theme": "the core theme in one or two sentences",
  "emotional_arc": "how the emotion evolves from beginning to end",
  "visual_metaphor": "the recurring visual metaphor",
  "lighting_color_plan": "lighting and color palette plan, including how it changes",
  "core_element_anchors": "recurring characters, props or places that must stay consistent"
}`

const VisualBiblePrompt = `Script:
%s`

// DescriptionSystemPrompt 单个分镜的画面描述
const DescriptionSystemPrompt = `你是一名分镜画面设计师。根据视觉圣经和当前分镜的文案，写出这个镜头的画面描述：主体、动作、场景、构图、光线与色彩。
画面描述必须与视觉圣经保持一致，用中文，80到150字。
只输出严格的JSON对象：{"storyboard_description": "画面描述"}`

const DescriptionPrompt = `【视觉圣经】
整体主题：%s
情绪曲线：%s
视觉隐喻：%s
光线色彩：%s
核心元素：%s

【当前分镜】
%s`

// 视频与图片的提示词优化要求不同
const OptimizeVideoSystemPrompt = `You are a prompt engineer for text-to-video models.
Rewrite the scene description into one English prompt for a single continuous shot: subject, motion, camera movement, environment, lighting, mood.
Describe movement explicitly and keep it physically plausible. Do not add text overlays or subtitles.
Output only the prompt.`

const OptimizeImageSystemPrompt = `You are a prompt engineer for text-to-image models.
Rewrite the scene description into one English prompt: subject, composition, environment, lighting, color, lens and style keywords, separated by commas.
Describe a single still frame. Do not add text, watermarks or subtitles.
Output only the prompt.`

const OptimizePrompt = `Aspect ratio: %s
Scene description:
%s`

// KeywordsSystemPrompt 关键词提取
const KeywordsSystemPrompt = `你负责从画面描述中提取用于生图的关键词，结合视觉圣经与风格，给出5到10个关键词。
只输出严格的JSON对象：{"keywords": ["中文关键词"], "keywords_en": ["english keyword"]}，两个数组一一对应。`

const KeywordsPrompt = `风格：%s
视觉基调：%s
画面描述：
%s`

// 翻译，要求按顺序输出JSON字符串数组
const TranslateSegmentSystemPrompt = `You are a professional subtitle translator. Translate each item faithfully and naturally, keep the tone, do not merge or split items.
Output a strict JSON array of strings with exactly the same number of items and the same order as the input. No explanations.`

const TranslateDescriptionSystemPrompt = `You translate storyboard scene descriptions for image and video generation models. Prefer concrete visual vocabulary, keep every visual detail, do not merge or split items.
Output a strict JSON array of strings with exactly the same number of items and the same order as the input. No explanations.`

const TranslatePrompt = `Translate into %s:
%s`

// StyleImageAnalysisPrompt 参考图风格分析
const StyleImageAnalysisPrompt = `请分析这张参考图的视觉风格，包括：画风/媒介、色彩倾向、光线、构图习惯、质感细节。
最后给出一段可以直接追加到生图提示词后面的英文风格描述。`

const StylePresetAnalysisPrompt = `下面是一种预设视觉风格的信息，请整理出它的视觉特征（画风、色彩、光线、构图、质感），
并给出一段可以直接追加到生图提示词后面的英文风格描述。
%s`
