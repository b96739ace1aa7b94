// Copyright (c) MemeFlow Authors.
// Licensed under the MIT License.

/*
Package bulk 实现批量图像请求的编排核心：单项执行器 + 有界并发派发器。

# 概述

一批相互独立的生成/编辑请求被并发执行在一个有界 worker 池里
（errgroup.SetLimit，默认上限 10），部分成功与部分失败共存于同一个
有序结果集中，任何一项的失败都不会中止整批。

# 核心类型

  - GenerationRequest — 生成/编辑两种变体的不可变请求
  - RequestResult     — 与请求一一对应的结果记录（位置索引 + 状态 + 失败详情）
  - BatchResult       — 按提交顺序排列的结果集与成功/失败计数
  - Executor          — 单项执行：校验、后端调用、原子写盘
  - Dispatcher        — 有界并发派发与结果聚合

# 不变式

  - len(requests) == len(results)，即使存在失败项
  - 同一批次内输出路径唯一，重复项在派发前判失败
  - 失败结果绝不在目标路径留下文件（临时文件 + rename 原子写）
  - 结果顺序恒等于提交顺序，与完成顺序无关
  - 派发器自身从不重试，重试策略是调用方层面的可组合关注点
*/
package bulk
